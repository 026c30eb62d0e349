package experiment

import (
	"context"
	"testing"
)

func TestRunBatchEmpty(t *testing.T) {
	reports, err := RunBatch(context.Background(), nil, fixtureDataset(10))
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if reports != nil {
		t.Errorf("RunBatch() = %v, want nil", reports)
	}
}

func TestRunBatchOrderAndDeterminism(t *testing.T) {
	defs := []Definition{
		baselineDefinition("first", 1),
		baselineDefinition("second", 2),
		baselineDefinition("third", 3),
	}
	ds := fixtureDataset(30)

	reports, err := RunBatch(context.Background(), defs, ds)
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("RunBatch() returned %d reports, want 3", len(reports))
	}
	for i, def := range defs {
		if reports[i].Name != def.Name {
			t.Errorf("reports[%d].Name = %q, want %q", i, reports[i].Name, def.Name)
		}
		if reports[i].Seed != def.Seed {
			t.Errorf("reports[%d].Seed = %d, want %d", i, reports[i].Seed, def.Seed)
		}
	}

	// Concurrent execution must match sequential execution run by run.
	for i, def := range defs {
		sequential, err := Run(context.Background(), def, ds)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if sequential.Evaluations[0].Result.Accuracy != reports[i].Evaluations[0].Result.Accuracy {
			t.Errorf("batch run %d diverged from sequential run", i)
		}
	}
}

func TestRunBatchFirstErrorAborts(t *testing.T) {
	bad := baselineDefinition("bad", 1)
	bad.Proportions = []float64{0.5, 0.9}

	defs := []Definition{
		baselineDefinition("good", 1),
		bad,
	}

	if _, err := RunBatch(context.Background(), defs, fixtureDataset(10)); err == nil {
		t.Error("RunBatch() expected error from invalid definition")
	}
}
