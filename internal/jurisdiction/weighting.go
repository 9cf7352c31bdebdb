package jurisdiction

import (
	"math"
	"time"
)

// ageWhenDateUnusable penalizes missing or unparseable incident dates:
// the case lands in the lowest-but-one recency tier instead of the
// worst one.
const ageWhenDateUnusable = 5.0

const incidentDateLayout = "2006-01-02"

// Weighting computes per-case weights from recency and metadata
// completeness. It is a pure value: safe to share across goroutines.
type Weighting struct {
	bins         []RecencyBin
	defaultMult  float64
	fieldWeights map[string]float64
	now          func() time.Time
}

func NewWeighting(cfg Config) *Weighting {
	return &Weighting{
		bins:         cfg.RecencyBins,
		defaultMult:  cfg.DefaultMultiplier,
		fieldWeights: cfg.FieldWeights,
		now:          time.Now,
	}
}

// Weight computes the combined case weight for one record.
func (w *Weighting) Weight(rec CaseRecord) CaseWeight {
	recency := w.RecencyMultiplier(rec)
	quality := w.QualityMultiplier(rec)
	return CaseWeight{
		RecencyMultiplier: recency,
		QualityMultiplier: quality,
		CaseWeight:        recency * quality,
	}
}

// RecencyMultiplier steps down the case weight by age band. Older
// settlements say less about today's pricing.
func (w *Weighting) RecencyMultiplier(rec CaseRecord) float64 {
	age := w.caseAgeYears(rec)
	for _, bin := range w.bins {
		if age <= bin.MaxAgeYears {
			return bin.Multiplier
		}
	}
	return w.defaultMult
}

// QualityMultiplier maps data completeness onto a weight. The square
// root flattens the curve: early improvements in a sparse record move
// the multiplier more than late ones.
//
// NOTE: the literal formula 0.6 * (0.4 * sqrt(completeness)) caps at
// 0.24 for fully complete records while the recency multiplier caps at
// 1.0. The asymmetry is carried over from the pricing model this
// implements; do not "fix" it here without recalibrating the corpus.
func (w *Weighting) QualityMultiplier(rec CaseRecord) float64 {
	return 0.6 * (0.4 * math.Sqrt(w.Completeness(rec)))
}

// Completeness is the weighted fraction of configured metadata fields
// that carry meaningful values, in [0, 1].
func (w *Weighting) Completeness(rec CaseRecord) float64 {
	presentWeight := 0.0
	totalWeight := 0.0
	for field, weight := range w.fieldWeights {
		if weight == 0 {
			continue
		}
		totalWeight += weight
		if fieldPresent(rec, field) {
			presentWeight += weight
		}
	}
	if totalWeight == 0 {
		return 0
	}
	return presentWeight / totalWeight
}

// fieldPresent treats nil, empty strings, empty collections, and
// numeric zero as absent. Different extractors store "empty" in
// different shapes.
func fieldPresent(rec CaseRecord, field string) bool {
	var value any
	switch field {
	case "settlement_value":
		value = rec.SettlementValue
	case "incident_date":
		value = rec.IncidentDate
	case "jurisdiction":
		value = rec.Jurisdiction
	default:
		value = rec.Metadata[field]
	}

	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func (w *Weighting) caseAgeYears(rec CaseRecord) float64 {
	if rec.IncidentDate == "" {
		return ageWhenDateUnusable
	}
	incident, err := time.Parse(incidentDateLayout, rec.IncidentDate)
	if err != nil {
		return ageWhenDateUnusable
	}
	return w.now().Sub(incident).Hours() / (24 * 365.25)
}
