package experiment

import (
	"context"
	"sync"

	"github.com/louisbranch/rookery/internal/dataset"
)

// RunBatch executes every definition concurrently against the same
// dataset, one goroutine per definition. Each run consumes its own
// seeded random source, so runs never share state. Reports come back
// in definition order; the first error cancels the remaining runs.
func RunBatch(ctx context.Context, defs []Definition, ds dataset.Dataset) ([]Report, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reports := make([]Report, len(defs))
	errs := make([]error, len(defs))

	var wg sync.WaitGroup
	for i, def := range defs {
		wg.Add(1)
		go func(i int, def Definition) {
			defer wg.Done()
			report, err := Run(ctx, def, ds)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			reports[i] = report
		}(i, def)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return reports, nil
}
