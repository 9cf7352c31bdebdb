package vectorsearch

import (
	"context"
	"fmt"
	"strings"
)

// CaseMatch is one historical case returned by a similarity query.
// Summary carries the indexed case text; Distance is the vector
// distance reported by the store (smaller is closer).
type CaseMatch struct {
	CaseID          string
	Source          string
	Jurisdiction    string
	SettlementValue string
	Summary         string
	Distance        float64
}

// Searcher retrieves historical cases similar to a lead description.
// Embedding happens inside the vector store; callers pass raw text.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]CaseMatch, error)
}

// FormatContext renders matches as the historical-context block handed
// to the scoring model. Empty input yields an explicit no-results line
// so the model is never given a silently blank section.
func FormatContext(matches []CaseMatch) string {
	if len(matches) == 0 {
		return "No similar historical cases were found."
	}
	var sb strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&sb, "Case %d", i+1)
		if m.CaseID != "" {
			fmt.Fprintf(&sb, " (%s)", m.CaseID)
		}
		sb.WriteString(":\n")
		if m.Jurisdiction != "" {
			fmt.Fprintf(&sb, "  Jurisdiction: %s\n", m.Jurisdiction)
		}
		if m.SettlementValue != "" {
			fmt.Fprintf(&sb, "  Settlement: %s\n", m.SettlementValue)
		}
		if m.Source != "" {
			fmt.Fprintf(&sb, "  Source file: %s\n", m.Source)
		}
		if m.Summary != "" {
			fmt.Fprintf(&sb, "  Summary: %s\n", m.Summary)
		}
		if i < len(matches)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
