package leadscoring

import (
	"fmt"
	"math"
	"regexp"
)

// ModifierSource yields a jurisdiction's correction multiplier. The
// calibration engine implements it; tests substitute fixed tables.
type ModifierSource interface {
	Modifier(jurisdiction string) float64
}

var scoreLinePattern = regexp.MustCompile(`(?i)(Lead Score:\s*)(\d+)(/100)`)

// Adjuster applies the jurisdiction modifier to a raw score and
// rewrites the score line inside the rationale to match.
type Adjuster struct {
	modifiers ModifierSource
}

func NewAdjuster(modifiers ModifierSource) *Adjuster {
	return &Adjuster{modifiers: modifiers}
}

// Apply returns the modifier used and the bounded final score. A
// missing jurisdiction or non-positive raw score gets the neutral
// modifier, leaving the score untouched.
func (a *Adjuster) Apply(rawScore int, jurisdiction string) (modifier float64, finalScore int) {
	if jurisdiction == "" || rawScore <= 0 {
		return 1.0, rawScore
	}
	modifier = a.modifiers.Modifier(jurisdiction)
	finalScore = int(math.Round(float64(rawScore) * modifier))
	if finalScore < 1 {
		finalScore = 1
	}
	if finalScore > 100 {
		finalScore = 100
	}
	return modifier, finalScore
}

// RewriteScoreLine replaces only the digits of the first
// "Lead Score: N/100" occurrence, preserving every other byte of the
// rationale, including the original casing and spacing of the label.
// Absent a score line the rationale is returned unchanged.
func RewriteScoreLine(rationale string, finalScore int) string {
	loc := scoreLinePattern.FindStringSubmatchIndex(rationale)
	if loc == nil {
		return rationale
	}
	// Submatch 2 is the digit run: indexes 4 and 5.
	return rationale[:loc[4]] + fmt.Sprintf("%d", finalScore) + rationale[loc[5]:]
}
