package jurisdiction

import "fmt"

// CaseRecord is one historical case as stored in the corpus. The
// settlement value arrives as free text ("$85,000", "null", "") and is
// parsed at aggregation time; Metadata carries whatever sparse fields
// the extraction pipeline recovered for the case.
type CaseRecord struct {
	CaseID          string         `json:"case_id" db:"case_id"`
	Source          string         `json:"source" db:"source"`
	Jurisdiction    string         `json:"jurisdiction" db:"jurisdiction"`
	SettlementValue string         `json:"settlement_value" db:"settlement_value"`
	IncidentDate    string         `json:"incident_date" db:"incident_date"`
	Metadata        map[string]any `json:"metadata"`
}

// CaseWeight is the derived per-case weight. Recomputed on demand,
// never persisted.
type CaseWeight struct {
	RecencyMultiplier float64 `json:"recency_multiplier"`
	QualityMultiplier float64 `json:"quality_multiplier"`
	CaseWeight        float64 `json:"case_weight"`
}

// CaseContribution records how one case entered a jurisdiction's
// weighted average, for audit output.
type CaseContribution struct {
	CaseID               string  `json:"case_id"`
	SettlementValue      float64 `json:"settlement_value"`
	RecencyMultiplier    float64 `json:"recency_multiplier"`
	QualityMultiplier    float64 `json:"quality_multiplier"`
	CaseWeight           float64 `json:"case_weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

type AggregateResult struct {
	Jurisdiction        string             `json:"jurisdiction"`
	WeightedAverage     float64            `json:"weighted_average"`
	RawSampleConfidence float64            `json:"raw_sample_confidence"`
	ValidCaseCount      int                `json:"valid_case_count"`
	TotalWeight         float64            `json:"total_weight"`
	CasesProcessed      []CaseContribution `json:"cases_processed,omitempty"`
}

// ShrinkageResult is one jurisdiction's calibrated pricing estimate.
// Result sets are replaced wholesale on recalibration, never mutated.
type ShrinkageResult struct {
	Jurisdiction        string  `json:"jurisdiction" db:"jurisdiction"`
	ShrunkEstimate      float64 `json:"shrunk_estimate" db:"shrunk_estimate"`
	ShrinkageConfidence float64 `json:"shrinkage_confidence" db:"shrinkage_confidence"`
	Modifier            float64 `json:"modifier" db:"modifier"`
}

// NoValidCasesError reports a jurisdiction whose case list contained no
// parseable non-zero settlement values. Such a jurisdiction cannot be
// priced; callers drop it from the comparison set rather than invent a
// value.
type NoValidCasesError struct {
	Jurisdiction string
	CaseCount    int
}

func (e *NoValidCasesError) Error() string {
	return fmt.Sprintf("jurisdiction %q has no cases with usable settlement values (%d cases examined)", e.Jurisdiction, e.CaseCount)
}
