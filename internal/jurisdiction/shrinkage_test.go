package jurisdiction

import (
	"math"
	"testing"
)

func agg(juris string, raw float64, n int) AggregateResult {
	return AggregateResult{Jurisdiction: juris, WeightedAverage: raw, ValidCaseCount: n}
}

func TestCalibrateReferenceDataset(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	results := c.Calibrate([]AggregateResult{
		agg("Suffolk County", 124209.57, 100),
		agg("Nassau County", 63425.90, 25),
		agg("Queens County", 69458.53, 8),
	})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byName := map[string]ShrinkageResult{}
	for _, r := range results {
		byName[r.Jurisdiction] = r
	}

	// global mean of raws is 85698.00; shrinkage confidences are
	// n/(n+10).
	checks := []struct {
		juris      string
		confidence float64
		shrunk     float64
		modifier   float64
	}{
		{"Suffolk County", 100.0 / 110.0, 120708.518, 1.15},  // clamped from 1.346
		{"Nassau County", 25.0 / 35.0, 69789.357, 0.8},       // clamped from 0.778
		{"Queens County", 8.0 / 18.0, 78480.458, 0.875323},
	}
	for _, want := range checks {
		got := byName[want.juris]
		if math.Abs(got.ShrinkageConfidence-want.confidence) > 1e-9 {
			t.Errorf("%s: confidence = %v, want %v", want.juris, got.ShrinkageConfidence, want.confidence)
		}
		if math.Abs(got.ShrunkEstimate-want.shrunk) > 0.01 {
			t.Errorf("%s: shrunk = %v, want %v", want.juris, got.ShrunkEstimate, want.shrunk)
		}
		if math.Abs(got.Modifier-want.modifier) > 1e-4 {
			t.Errorf("%s: modifier = %v, want %v", want.juris, got.Modifier, want.modifier)
		}
	}

	// The 8-case jurisdiction must shrink proportionally more toward
	// the mean than the 100-case jurisdiction.
	rel := func(juris string, raw float64) float64 {
		return math.Abs(byName[juris].ShrunkEstimate-raw) / raw
	}
	if rel("Queens County", 69458.53) <= rel("Suffolk County", 124209.57) {
		t.Fatal("small-sample jurisdiction should shrink relatively more than large-sample one")
	}
}

func TestCalibrateEmptySet(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	results := c.Calibrate(nil)
	if results == nil || len(results) != 0 {
		t.Fatalf("empty input should yield empty (non-nil) result set, got %v", results)
	}
}

func TestModifiersAlwaysBounded(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	sets := [][]AggregateResult{
		{agg("A", 1000, 1), agg("B", 900000, 500)},
		{agg("A", 5, 1)},
		{agg("A", 50000, 3), agg("B", 50000, 3), agg("C", 50000, 3)},
		{agg("A", 1, 1), agg("B", 2, 2), agg("C", 3000000, 3), agg("D", 42, 400)},
	}
	for _, set := range sets {
		for _, r := range c.Calibrate(set) {
			if r.Modifier < 0.8 || r.Modifier > 1.15 {
				t.Fatalf("modifier %v for %s outside [0.8, 1.15]", r.Modifier, r.Jurisdiction)
			}
		}
	}
}

func TestShrinkageConfidenceMonotonic(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	prev := -1.0
	for _, n := range []int{0, 1, 2, 5, 10, 30, 100, 1000, 100000} {
		results := c.Calibrate([]AggregateResult{agg("A", 50000, n), agg("B", 60000, 10)})
		var conf float64
		for _, r := range results {
			if r.Jurisdiction == "A" {
				conf = r.ShrinkageConfidence
			}
		}
		if conf <= prev {
			t.Fatalf("confidence not increasing: n=%d gave %v after %v", n, conf, prev)
		}
		prev = conf
	}
	if prev < 0.999 {
		t.Fatalf("confidence should approach 1 for huge n, got %v", prev)
	}
}

func TestSingleJurisdictionSingleCaseHeavyShrinkage(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	results := c.Calibrate([]AggregateResult{agg("Lone County", 250000, 1)})
	r := results[0]
	if math.Abs(r.ShrinkageConfidence-1.0/11.0) > 1e-9 {
		t.Fatalf("confidence = %v, want 1/11", r.ShrinkageConfidence)
	}
	// Degenerate global mean equals the only raw value, so the shrunk
	// estimate is unchanged and the modifier is exactly neutral.
	if math.Abs(r.ShrunkEstimate-250000) > 1e-6 || r.Modifier != 1.0 {
		t.Fatalf("unexpected degenerate result: %+v", r)
	}
}

func TestModifierUnknownJurisdictionNeutral(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	c.Calibrate([]AggregateResult{agg("A", 50000, 10), agg("B", 90000, 10)})
	if got := c.Modifier("Nowhere County"); got != 1.0 {
		t.Fatalf("unknown jurisdiction modifier = %v, want neutral 1.0", got)
	}
	if got := c.Modifier("B"); got == 1.0 {
		t.Fatalf("known jurisdiction B should have a non-neutral modifier, got %v", got)
	}
}

func TestCalibrateReplacesWholesale(t *testing.T) {
	c := NewCalibrator(DefaultConfig())
	c.Calibrate([]AggregateResult{agg("A", 50000, 10), agg("B", 90000, 10)})
	c.Calibrate([]AggregateResult{agg("C", 70000, 10)})
	if got := c.Modifier("A"); got != 1.0 {
		t.Fatalf("stale jurisdiction A should be gone after recalibration, got %v", got)
	}
	if len(c.Results()) != 1 {
		t.Fatalf("results = %+v, want only C", c.Results())
	}
}
