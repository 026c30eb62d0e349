// Package storage defines the persistence contracts for experiment
// runs.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a run identifier with no stored record.
var ErrNotFound = errors.New("run not found")

// PartitionScore captures one partition's evaluation inside a stored
// run.
type PartitionScore struct {
	Partition   string      `json:"partition"`
	Size        int         `json:"size"`
	Accuracy    float64     `json:"accuracy"`
	Labels      []string    `json:"labels"`
	Counts      [][]int     `json:"counts"`
	Proportions [][]float64 `json:"proportions"`
}

// Run is a persisted experiment run.
type Run struct {
	ID             string
	Name           string
	Label          string
	Model          string
	Seed           int64
	Proportions    []float64
	PartitionSizes []int
	Scores         []PartitionScore
	CreatedAt      time.Time
}

// RunStore persists experiment runs.
type RunStore interface {
	// PutRun stores one run record.
	PutRun(ctx context.Context, run Run) error
	// GetRun returns one run by ID, or ErrNotFound.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns up to limit runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
