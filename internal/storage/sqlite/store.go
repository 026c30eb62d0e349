// Package sqlite provides a SQLite-backed run storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/rookery/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/rookery/internal/storage"
	"github.com/louisbranch/rookery/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists experiment runs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite run store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutRun inserts one run record.
func (s *Store) PutRun(ctx context.Context, run storage.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	runID := strings.TrimSpace(run.ID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(run.Name) == "" {
		return fmt.Errorf("run name is required")
	}
	createdAt := run.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	proportions, err := json.Marshal(run.Proportions)
	if err != nil {
		return fmt.Errorf("encode proportions: %w", err)
	}
	sizes, err := json.Marshal(run.PartitionSizes)
	if err != nil {
		return fmt.Errorf("encode partition sizes: %w", err)
	}
	scores, err := json.Marshal(run.Scores)
	if err != nil {
		return fmt.Errorf("encode scores: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO runs (
		   id, name, label, model, seed,
		   proportions, partition_sizes, scores, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		run.Name,
		run.Label,
		run.Model,
		run.Seed,
		string(proportions),
		string(sizes),
		string(scores),
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("put run: %w", err)
	}
	return nil
}

// GetRun returns one run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return storage.Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Run{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.Run{}, fmt.Errorf("run id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, label, model, seed,
		        proportions, partition_sizes, scores, created_at
		   FROM runs
		  WHERE id = ?`,
		id,
	)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Run{}, storage.ErrNotFound
		}
		return storage.Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, most recent first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, label, model, seed,
		        proportions, partition_sizes, scores, created_at
		   FROM runs
		  ORDER BY created_at DESC, id DESC
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]storage.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (storage.Run, error) {
	var run storage.Run
	var proportions string
	var sizes string
	var scores string
	var createdAt int64

	if err := row.Scan(
		&run.ID,
		&run.Name,
		&run.Label,
		&run.Model,
		&run.Seed,
		&proportions,
		&sizes,
		&scores,
		&createdAt,
	); err != nil {
		return storage.Run{}, err
	}

	if err := json.Unmarshal([]byte(proportions), &run.Proportions); err != nil {
		return storage.Run{}, fmt.Errorf("decode proportions: %w", err)
	}
	if err := json.Unmarshal([]byte(sizes), &run.PartitionSizes); err != nil {
		return storage.Run{}, fmt.Errorf("decode partition sizes: %w", err)
	}
	if err := json.Unmarshal([]byte(scores), &run.Scores); err != nil {
		return storage.Run{}, fmt.Errorf("decode scores: %w", err)
	}
	run.CreatedAt = fromMillis(createdAt)
	return run, nil
}

var _ storage.RunStore = (*Store)(nil)
