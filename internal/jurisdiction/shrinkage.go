package jurisdiction

import "sync"

// Calibrator converts jurisdiction aggregates into bounded correction
// modifiers using sample-size shrinkage: a jurisdiction with few cases
// is pulled toward the cross-jurisdiction mean so sparse data cannot
// produce an overconfident adjustment.
//
// Calibrate replaces the cached result set wholesale; Modifier reads
// it. Both are safe for concurrent use.
type Calibrator struct {
	conservativeFactor float64
	floor, ceiling     float64

	mu        sync.RWMutex
	results   []ShrinkageResult
	modifiers map[string]float64
}

func NewCalibrator(cfg Config) *Calibrator {
	return &Calibrator{
		conservativeFactor: cfg.ConservativeFactor,
		floor:              cfg.ModifierFloor,
		ceiling:            cfg.ModifierCeiling,
		modifiers:          map[string]float64{},
	}
}

// Calibrate shrinks each jurisdiction's weighted average toward the
// unweighted cross-jurisdiction mean and derives a clamped modifier
// per jurisdiction. An empty input yields an empty result set, not an
// error. The returned slice is also cached for Modifier lookups.
func (c *Calibrator) Calibrate(aggregates []AggregateResult) []ShrinkageResult {
	results := c.computeShrinkage(aggregates)
	c.Replace(results)
	return results
}

func (c *Calibrator) computeShrinkage(aggregates []AggregateResult) []ShrinkageResult {
	if len(aggregates) == 0 {
		return []ShrinkageResult{}
	}

	globalMean := 0.0
	for _, agg := range aggregates {
		globalMean += agg.WeightedAverage
	}
	globalMean /= float64(len(aggregates))

	results := make([]ShrinkageResult, 0, len(aggregates))
	shrunkSum := 0.0
	for _, agg := range aggregates {
		n := float64(agg.ValidCaseCount)
		confidence := n / (n + c.conservativeFactor)
		shrunk := confidence*agg.WeightedAverage + (1-confidence)*globalMean
		shrunkSum += shrunk
		results = append(results, ShrinkageResult{
			Jurisdiction:        agg.Jurisdiction,
			ShrunkEstimate:      shrunk,
			ShrinkageConfidence: confidence,
		})
	}

	shrunkMean := shrunkSum / float64(len(results))
	for i := range results {
		results[i].Modifier = c.clamp(results[i].ShrunkEstimate / shrunkMean)
	}
	return results
}

// Replace swaps in a complete result set, e.g. one loaded from the
// store at startup.
func (c *Calibrator) Replace(results []ShrinkageResult) {
	modifiers := make(map[string]float64, len(results))
	for _, r := range results {
		modifiers[r.Jurisdiction] = r.Modifier
	}
	c.mu.Lock()
	c.results = results
	c.modifiers = modifiers
	c.mu.Unlock()
}

// Modifier returns the correction multiplier for a jurisdiction. An
// unseen jurisdiction gets the neutral 1.0 so it never distorts a
// score.
func (c *Calibrator) Modifier(jurisdiction string) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.modifiers[jurisdiction]; ok {
		return m
	}
	return 1.0
}

// Results returns a copy of the current calibration.
func (c *Calibrator) Results() []ShrinkageResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ShrinkageResult, len(c.results))
	copy(out, c.results)
	return out
}

func (c *Calibrator) clamp(v float64) float64 {
	if v < c.floor {
		return c.floor
	}
	if v > c.ceiling {
		return c.ceiling
	}
	return v
}
