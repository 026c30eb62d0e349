// Package mcp parses MCP command flags and serves the stdio transport.
package mcp

import (
	"context"
	"flag"
	"fmt"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/dataset/synth"
	"github.com/louisbranch/rookery/internal/experiment"
	rookerymcp "github.com/louisbranch/rookery/internal/mcp"
	entrypoint "github.com/louisbranch/rookery/internal/platform/cmd"
	"github.com/louisbranch/rookery/internal/platform/config"
	"github.com/louisbranch/rookery/internal/storage/sqlite"
)

// Config holds MCP command configuration.
type Config struct {
	DataPath  string `env:"ROOKERY_DATA_PATH"`
	SynthSize int    `env:"ROOKERY_SYNTH_SIZE" envDefault:"333"`
	SynthSeed int64  `env:"ROOKERY_SYNTH_SEED" envDefault:"1"`
	StorePath string `env:"ROOKERY_STORE_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DataPath, "data", cfg.DataPath, "dataset CSV path (empty: generate a synthetic dataset)")
	fs.IntVar(&cfg.SynthSize, "synth-size", cfg.SynthSize, "synthetic dataset size")
	fs.Int64Var(&cfg.SynthSeed, "synth-seed", cfg.SynthSeed, "synthetic dataset seed")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "SQLite run store path (empty: no persistence)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server on stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return run(ctx, cfg)
	})
}

func run(ctx context.Context, cfg Config) error {
	source := DataSource(cfg)

	service := &experiment.Service{}
	if cfg.StorePath != "" {
		store, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
		service.Store = store
	}

	server, err := rookerymcp.New(service, source, service.Store)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// DataSource builds the dataset loader the MCP tools read from. The
// dataset is loaded per call so a CSV edited between calls is picked up.
func DataSource(cfg Config) rookerymcp.DataSource {
	return func() (dataset.Dataset, error) {
		if cfg.DataPath != "" {
			return dataset.ReadCSVFile(cfg.DataPath)
		}
		return synth.Generate(synth.Config{
			Size:           cfg.SynthSize,
			Seed:           cfg.SynthSeed,
			MissingSexRate: 0.03,
		})
	}
}
