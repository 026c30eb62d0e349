// Package experiment factors the split/fit/evaluate workflow into one
// reusable driver: filter to complete cases, partition, fit on the
// training partition, then score every evaluation partition.
package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/rookery/internal/core/evaluate"
	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/rookery/internal/experiment"

// Definition describes one experiment: which label to predict from
// which features, how to partition the data, and which fitter supplies
// the model.
type Definition struct {
	Name        string
	Label       dataset.Field
	Features    []dataset.Field
	Proportions []float64
	Seed        int64
	Fitter      model.Fitter
}

// PartitionEvaluation is the scored outcome for one evaluation
// partition.
type PartitionEvaluation struct {
	Partition string
	Size      int
	Result    evaluate.Result
}

// Report bundles the outcome of one experiment run. RunID is assigned
// by the Service; direct Run calls leave it empty.
type Report struct {
	RunID          string
	Name           string
	Seed           int64
	PartitionSizes []int
	Evaluations    []PartitionEvaluation
}

// Run executes one experiment against the dataset.
//
// Records with missing values are dropped before splitting. The first
// partition is the training partition; every remaining partition is
// predicted and evaluated in order. Any erroring stage aborts the run
// with a wrapped error and no partial report.
func Run(ctx context.Context, def Definition, ds dataset.Dataset) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if err := validateDefinition(def); err != nil {
		return Report{}, err
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "experiment.run", trace.WithAttributes(
		attribute.String("experiment.name", def.Name),
		attribute.String("experiment.label", def.Label.String()),
		attribute.Int64("experiment.seed", def.Seed),
	))
	defer span.End()

	report, err := run(ctx, tracer, def, ds)
	if err != nil {
		span.RecordError(err)
		return Report{}, err
	}
	return report, nil
}

func run(ctx context.Context, tracer trace.Tracer, def Definition, ds dataset.Dataset) (Report, error) {
	complete := ds.CompleteCases()

	_, splitSpan := tracer.Start(ctx, "experiment.split")
	partitions, err := complete.Split(def.Proportions, def.Seed)
	splitSpan.End()
	if err != nil {
		return Report{}, fmt.Errorf("split dataset: %w", err)
	}
	if len(partitions) < 2 {
		return Report{}, fmt.Errorf("experiment %q needs a training partition and at least one evaluation partition, got %d", def.Name, len(partitions))
	}

	sizes := make([]int, len(partitions))
	for i, partition := range partitions {
		sizes[i] = partition.Len()
	}

	_, fitSpan := tracer.Start(ctx, "experiment.fit", trace.WithAttributes(
		attribute.Int("experiment.train_size", partitions[0].Len()),
	))
	classifier, err := def.Fitter.Fit(partitions[0])
	fitSpan.End()
	if err != nil {
		return Report{}, fmt.Errorf("fit model: %w", err)
	}

	evaluations := make([]PartitionEvaluation, 0, len(partitions)-1)
	for i, partition := range partitions[1:] {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		name := partitionName(i+1, len(partitions))

		_, evalSpan := tracer.Start(ctx, "experiment.evaluate", trace.WithAttributes(
			attribute.String("experiment.partition", name),
		))
		evaluation, err := evaluatePartition(def, classifier, partition, name)
		evalSpan.End()
		if err != nil {
			return Report{}, err
		}
		evaluations = append(evaluations, evaluation)
	}

	return Report{
		Name:           def.Name,
		Seed:           def.Seed,
		PartitionSizes: sizes,
		Evaluations:    evaluations,
	}, nil
}

func evaluatePartition(def Definition, classifier model.Classifier, partition dataset.Dataset, name string) (PartitionEvaluation, error) {
	predicted, err := classifier.Predict(partition)
	if err != nil {
		return PartitionEvaluation{}, fmt.Errorf("predict %s partition: %w", name, err)
	}
	observed, err := partition.Labels(def.Label)
	if err != nil {
		return PartitionEvaluation{}, fmt.Errorf("read %s labels: %w", name, err)
	}
	result, err := evaluate.Evaluate(predicted, observed)
	if err != nil {
		return PartitionEvaluation{}, fmt.Errorf("evaluate %s partition: %w", name, err)
	}
	return PartitionEvaluation{Partition: name, Size: partition.Len(), Result: result}, nil
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return errors.New("experiment name is required")
	}
	if def.Fitter == nil {
		return errors.New("experiment fitter is required")
	}
	if len(def.Proportions) == 0 {
		return errors.New("experiment proportions are required")
	}
	return nil
}

// partitionName returns the canonical name for partition i of total:
// train, then validation and test for three-way splits, test alone for
// two-way splits.
func partitionName(i, total int) string {
	if i == 0 {
		return "train"
	}
	switch total {
	case 2:
		return "test"
	case 3:
		if i == 1 {
			return "validation"
		}
		return "test"
	default:
		return fmt.Sprintf("partition-%d", i)
	}
}

// DescribeFitter returns a short description of the fitter for
// reporting and persistence.
func DescribeFitter(fitter model.Fitter) string {
	if fitter == nil {
		return "none"
	}
	if s, ok := fitter.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", fitter)
}
