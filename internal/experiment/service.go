package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/id"
	"github.com/louisbranch/rookery/internal/storage"
)

// Service runs experiments, assigns run identifiers, and optionally
// persists the outcomes. A nil Store disables persistence.
type Service struct {
	Store storage.RunStore
}

// Run executes one experiment, tags the report with a fresh run ID,
// and persists it when a store is configured.
func (s *Service) Run(ctx context.Context, def Definition, ds dataset.Dataset) (Report, error) {
	report, err := Run(ctx, def, ds)
	if err != nil {
		return Report{}, err
	}

	runID, err := id.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	report.RunID = runID

	if s != nil && s.Store != nil {
		if err := s.Store.PutRun(ctx, toStorageRun(def, report)); err != nil {
			return Report{}, fmt.Errorf("persist run %s: %w", runID, err)
		}
	}
	return report, nil
}

// RunBatch executes the definitions concurrently and persists every
// report when a store is configured.
func (s *Service) RunBatch(ctx context.Context, defs []Definition, ds dataset.Dataset) ([]Report, error) {
	reports, err := RunBatch(ctx, defs, ds)
	if err != nil {
		return nil, err
	}

	for i := range reports {
		runID, err := id.NewID()
		if err != nil {
			return nil, fmt.Errorf("generate run id: %w", err)
		}
		reports[i].RunID = runID

		if s != nil && s.Store != nil {
			if err := s.Store.PutRun(ctx, toStorageRun(defs[i], reports[i])); err != nil {
				return nil, fmt.Errorf("persist run %s: %w", runID, err)
			}
		}
	}
	return reports, nil
}

func toStorageRun(def Definition, report Report) storage.Run {
	scores := make([]storage.PartitionScore, 0, len(report.Evaluations))
	for _, evaluation := range report.Evaluations {
		scores = append(scores, storage.PartitionScore{
			Partition:   evaluation.Partition,
			Size:        evaluation.Size,
			Accuracy:    evaluation.Result.Accuracy,
			Labels:      evaluation.Result.Labels,
			Counts:      evaluation.Result.Counts,
			Proportions: evaluation.Result.Proportions,
		})
	}

	return storage.Run{
		ID:             report.RunID,
		Name:           report.Name,
		Label:          def.Label.String(),
		Model:          DescribeFitter(def.Fitter),
		Seed:           report.Seed,
		Proportions:    def.Proportions,
		PartitionSizes: report.PartitionSizes,
		Scores:         scores,
		CreatedAt:      time.Now().UTC(),
	}
}
