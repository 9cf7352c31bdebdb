package jurisdiction

import "fmt"

// RecencyBin maps a maximum case age in years to a weight multiplier.
// Bins are evaluated in ascending MaxAgeYears order; ages beyond the
// last bin get DefaultMultiplier.
type RecencyBin struct {
	MaxAgeYears float64 `yaml:"max_age_years" json:"max_age_years"`
	Multiplier  float64 `yaml:"multiplier" json:"multiplier"`
}

type Config struct {
	// ConservativeFactor is the shrinkage denominator constant: how many
	// cases a jurisdiction needs before its own average dominates over
	// the global mean.
	ConservativeFactor float64 `yaml:"conservative_factor" json:"conservative_factor"`

	// ModifierBounds clamps the final correction multiplier.
	ModifierFloor   float64 `yaml:"modifier_floor" json:"modifier_floor"`
	ModifierCeiling float64 `yaml:"modifier_ceiling" json:"modifier_ceiling"`

	RecencyBins       []RecencyBin `yaml:"recency_bins" json:"recency_bins"`
	DefaultMultiplier float64      `yaml:"default_multiplier" json:"default_multiplier"`

	// FieldWeights drives the data-completeness score: field name to
	// relative weight. Zero-weight entries are skipped.
	FieldWeights map[string]float64 `yaml:"field_weights" json:"field_weights"`
}

func DefaultConfig() Config {
	return Config{
		ConservativeFactor: 10,
		ModifierFloor:      0.8,
		ModifierCeiling:    1.15,
		RecencyBins: []RecencyBin{
			{MaxAgeYears: 1, Multiplier: 1.0},
			{MaxAgeYears: 3, Multiplier: 0.8},
			{MaxAgeYears: 5, Multiplier: 0.6},
		},
		DefaultMultiplier: 0.4,
		FieldWeights: map[string]float64{
			"settlement_value": 0.25,
			"incident_date":    0.15,
			"jurisdiction":     0.15,
			"injury_types":     0.15,
			"injury_severity":  0.10,
			"case_type":        0.10,
			"liability_clear":  0.05,
			"treatment":        0.05,
		},
	}
}

func (c Config) Validate() error {
	if c.ConservativeFactor <= 0 {
		return fmt.Errorf("conservative_factor must be positive, got %v", c.ConservativeFactor)
	}
	if c.ModifierFloor <= 0 || c.ModifierCeiling < c.ModifierFloor {
		return fmt.Errorf("modifier bounds [%v, %v] are invalid", c.ModifierFloor, c.ModifierCeiling)
	}
	if len(c.RecencyBins) == 0 {
		return fmt.Errorf("at least one recency bin is required")
	}
	prev := 0.0
	for i, bin := range c.RecencyBins {
		if bin.MaxAgeYears <= prev {
			return fmt.Errorf("recency bin %d: max_age_years must increase (got %v after %v)", i, bin.MaxAgeYears, prev)
		}
		prev = bin.MaxAgeYears
	}
	return nil
}
