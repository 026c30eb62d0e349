// Package rookery parses flags for the experiment CLI and runs one
// experiment or a Lua scenario batch.
package rookery

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/dataset/synth"
	"github.com/louisbranch/rookery/internal/experiment"
	"github.com/louisbranch/rookery/internal/experiment/script"
	entrypoint "github.com/louisbranch/rookery/internal/platform/cmd"
	"github.com/louisbranch/rookery/internal/platform/config"
	"github.com/louisbranch/rookery/internal/random"
	"github.com/louisbranch/rookery/internal/storage/sqlite"
)

// Config holds experiment command configuration.
type Config struct {
	DataPath     string `env:"ROOKERY_DATA_PATH"`
	SynthSize    int    `env:"ROOKERY_SYNTH_SIZE"    envDefault:"333"`
	SynthSeed    int64  `env:"ROOKERY_SYNTH_SEED"    envDefault:"1"`
	StorePath    string `env:"ROOKERY_STORE_PATH"`
	ScenarioPath string `env:"ROOKERY_SCENARIO_PATH"`

	Name        string
	Label       string
	Model       string
	Features    string
	Proportions string
	Seed        int64
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		Name:        "experiment",
		Label:       "species",
		Model:       "centroid",
		Features:    "bill_length_mm,bill_depth_mm,flipper_length_mm,body_mass_g",
		Proportions: "0.7,0.3",
	}
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DataPath, "data", cfg.DataPath, "dataset CSV path (empty: generate a synthetic dataset)")
	fs.IntVar(&cfg.SynthSize, "synth-size", cfg.SynthSize, "synthetic dataset size")
	fs.Int64Var(&cfg.SynthSeed, "synth-seed", cfg.SynthSeed, "synthetic dataset seed (0 = random)")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "SQLite run store path (empty: no persistence)")
	fs.StringVar(&cfg.ScenarioPath, "scenario", cfg.ScenarioPath, "Lua scenario file with a batch of experiments")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "experiment name")
	fs.StringVar(&cfg.Label, "label", cfg.Label, "categorical field to predict")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "model: linear, binary:probability, binary:linear, centroid, constant:<label>")
	fs.StringVar(&cfg.Features, "features", cfg.Features, "comma-separated numeric feature fields")
	fs.StringVar(&cfg.Proportions, "proportions", cfg.Proportions, "comma-separated partition proportions, training first")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "split seed (0 = crypto seed, logged)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the experiment command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceRookery, func(ctx context.Context) error {
		return run(ctx, cfg, out)
	})
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	ds, err := loadDataset(cfg)
	if err != nil {
		return err
	}
	complete := ds.CompleteCases()
	log.Printf("dataset: %d records, %d complete cases", ds.Len(), complete.Len())

	printSummary(out, ds)

	service := &experiment.Service{}
	if cfg.StorePath != "" {
		store, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return fmt.Errorf("open run store: %w", err)
		}
		defer store.Close()
		service.Store = store
	}

	if cfg.ScenarioPath != "" {
		defs, err := script.LoadFile(cfg.ScenarioPath)
		if err != nil {
			return fmt.Errorf("load scenario: %w", err)
		}
		reports, err := service.RunBatch(ctx, defs, ds)
		if err != nil {
			return err
		}
		for _, report := range reports {
			printReport(out, report)
		}
		return nil
	}

	def, err := buildDefinition(cfg)
	if err != nil {
		return err
	}
	report, err := service.Run(ctx, def, ds)
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}

func loadDataset(cfg Config) (dataset.Dataset, error) {
	if cfg.DataPath != "" {
		return dataset.ReadCSVFile(cfg.DataPath)
	}
	return synth.Generate(synth.Config{
		Size:           cfg.SynthSize,
		Seed:           cfg.SynthSeed,
		MissingSexRate: 0.03,
	})
}

func buildDefinition(cfg Config) (experiment.Definition, error) {
	label, err := dataset.ParseField(cfg.Label)
	if err != nil {
		return experiment.Definition{}, err
	}

	var features []dataset.Field
	for _, name := range strings.Split(cfg.Features, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		feature, err := dataset.ParseField(name)
		if err != nil {
			return experiment.Definition{}, err
		}
		features = append(features, feature)
	}

	var proportions []float64
	for _, part := range strings.Split(cfg.Proportions, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		proportion, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return experiment.Definition{}, fmt.Errorf("parse proportion %q: %w", part, err)
		}
		proportions = append(proportions, proportion)
	}

	fitter, err := script.NewFitter(cfg.Model, label, features)
	if err != nil {
		return experiment.Definition{}, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed, err = random.NewSeed()
		if err != nil {
			return experiment.Definition{}, err
		}
		log.Printf("using split seed %d", seed)
	}

	return experiment.Definition{
		Name:        cfg.Name,
		Label:       label,
		Features:    features,
		Proportions: proportions,
		Seed:        seed,
		Fitter:      fitter,
	}, nil
}

func printSummary(out io.Writer, ds dataset.Dataset) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "column\tcount\tmissing\tmean\tstddev\tmin\tmax")
	for _, column := range ds.Summary() {
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			column.Field, column.Count, column.Missing,
			column.Mean, column.StdDev, column.Min, column.Max)
	}
	w.Flush()
	fmt.Fprintln(out)
}

func printReport(out io.Writer, report experiment.Report) {
	fmt.Fprintf(out, "run %s: %s (seed %d, partitions %v)\n",
		report.RunID, report.Name, report.Seed, report.PartitionSizes)

	for _, evaluation := range report.Evaluations {
		fmt.Fprintf(out, "%s accuracy: %.4f (%d/%d)\n",
			evaluation.Partition, evaluation.Result.Accuracy,
			evaluation.Result.Correct, evaluation.Result.Total)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "observed\\predicted\t%s\n", strings.Join(evaluation.Result.Labels, "\t"))
		for i, label := range evaluation.Result.Labels {
			cells := make([]string, len(evaluation.Result.Labels))
			for j := range evaluation.Result.Labels {
				cells[j] = strconv.Itoa(evaluation.Result.Counts[i][j])
			}
			fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(cells, "\t"))
		}
		w.Flush()
	}
	fmt.Fprintln(out)
}
