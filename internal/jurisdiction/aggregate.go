package jurisdiction

import (
	"strconv"
	"strings"
)

// Aggregator folds one jurisdiction's historical cases into a weighted
// average settlement value. Pure aggregation over the supplied list;
// recomputation policy belongs to the caller.
type Aggregator struct {
	weighting *Weighting

	// sampleConfidenceCases is the case count at which the raw sample
	// confidence saturates at 1.0.
	sampleConfidenceCases int
}

func NewAggregator(weighting *Weighting) *Aggregator {
	return &Aggregator{weighting: weighting, sampleConfidenceCases: 30}
}

// Compute returns the weighted average settlement for one
// jurisdiction's cases. Cases without a parseable non-zero settlement
// value are skipped. When nothing usable remains the jurisdiction
// cannot be priced and a *NoValidCasesError is returned instead of a
// defaulted value.
func (a *Aggregator) Compute(juris string, cases []CaseRecord) (AggregateResult, error) {
	weightSum := 0.0
	weightedSettlementSum := 0.0
	contributions := make([]CaseContribution, 0, len(cases))

	for _, rec := range cases {
		settlement, ok := parseSettlement(rec.SettlementValue)
		if !ok {
			continue
		}

		cw := a.weighting.Weight(rec)
		weightedSettlementSum += settlement * cw.CaseWeight
		weightSum += cw.CaseWeight

		contributions = append(contributions, CaseContribution{
			CaseID:               rec.CaseID,
			SettlementValue:      settlement,
			RecencyMultiplier:    cw.RecencyMultiplier,
			QualityMultiplier:    cw.QualityMultiplier,
			CaseWeight:           cw.CaseWeight,
			WeightedContribution: settlement * cw.CaseWeight,
		})
	}

	if weightSum == 0 {
		return AggregateResult{}, &NoValidCasesError{Jurisdiction: juris, CaseCount: len(cases)}
	}

	valid := len(contributions)
	confidence := float64(valid) / float64(a.sampleConfidenceCases)
	if confidence > 1.0 {
		confidence = 1.0
	}

	return AggregateResult{
		Jurisdiction:        juris,
		WeightedAverage:     weightedSettlementSum / weightSum,
		RawSampleConfidence: confidence,
		ValidCaseCount:      valid,
		TotalWeight:         weightSum,
		CasesProcessed:      contributions,
	}, nil
}

// parseSettlement converts stored settlement text into a float. Values
// arrive as "$85,000", "85000.50", "null", or empty.
func parseSettlement(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return 0, false
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
