package jurisdiction

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Recalibrator recomputes every jurisdiction's aggregate from the
// corpus store and feeds the results through the calibrator.
// Jurisdictions with no usable settlement values are excluded from the
// comparison set rather than priced with an invented value.
type Recalibrator struct {
	store      *Store
	aggregator *Aggregator
	calibrator *Calibrator
}

func NewRecalibrator(store *Store, aggregator *Aggregator, calibrator *Calibrator) *Recalibrator {
	return &Recalibrator{store: store, aggregator: aggregator, calibrator: calibrator}
}

// Run recomputes all aggregates (one goroutine per jurisdiction; the
// aggregation is pure CPU work over store reads), calibrates, and
// persists the new modifier set.
func (r *Recalibrator) Run(ctx context.Context) ([]ShrinkageResult, error) {
	jurisdictions, err := r.store.ListJurisdictions()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	aggregates := make([]AggregateResult, 0, len(jurisdictions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, name := range jurisdictions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cases, err := r.store.CasesByJurisdiction(name)
			if err != nil {
				return err
			}
			agg, err := r.aggregator.Compute(name, cases)
			if err != nil {
				var nve *NoValidCasesError
				if errors.As(err, &nve) {
					log.Printf("recalibrate: skipping %s: %v", name, err)
					return nil
				}
				return err
			}
			mu.Lock()
			aggregates = append(aggregates, agg)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic calibration input regardless of goroutine order.
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].Jurisdiction < aggregates[j].Jurisdiction })

	results := r.calibrator.Calibrate(aggregates)
	if err := r.store.SaveResults(results); err != nil {
		return nil, err
	}
	log.Printf("recalibrate: calibrated %d of %d jurisdictions", len(results), len(jurisdictions))
	return results, nil
}
