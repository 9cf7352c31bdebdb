package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"leadscore/internal/leadscoring"
)

const disclaimer = "This is an automated lead valuation intended for intake triage. " +
	"It is not legal advice and does not replace attorney review of the underlying case."

// BuildMarkdown renders a scoring result as the report shown to intake
// staff. Degraded results get an explicit failure banner instead of a
// score table.
func BuildMarkdown(result leadscoring.ScoreResult, lead leadscoring.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Lead Valuation Report\n\n")
	fmt.Fprintf(&b, "- Lead ID: %s\n", result.LeadID)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n\n", disclaimer)

	if result.StopReason == leadscoring.StopModelError {
		fmt.Fprintf(&b, "> FAILED: Scoring did not complete. Treat this lead as unscored pending manual review.\n\n")
		fmt.Fprintf(&b, "```\n%s\n```\n", sanitize(result.Rationale))
		return b.String()
	}

	fmt.Fprintf(&b, "## Score\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&b, "| Final Score | **%d/100** |\n", result.FinalScore)
	fmt.Fprintf(&b, "| Raw Score | %d/100 |\n", result.RawScore)
	fmt.Fprintf(&b, "| Model Confidence | %d/100 |\n", result.Confidence)
	if result.Jurisdiction != "" {
		fmt.Fprintf(&b, "| Jurisdiction | %s |\n", sanitize(result.Jurisdiction))
		fmt.Fprintf(&b, "| Jurisdiction Modifier | %.3fx |\n", result.ModifierApplied)
	}
	fmt.Fprintf(&b, "| Tool Calls Used | %d |\n", result.ToolCallsUsed)
	fmt.Fprintf(&b, "| Stop Reason | `%s` |\n\n", result.StopReason)

	fmt.Fprintf(&b, "## Lead Description\n\n%s\n\n", sanitize(lead.Description))
	fmt.Fprintf(&b, "---\n\n## Analysis\n\n%s\n", result.Rationale)
	return b.String()
}

// RenderHTML converts report markdown to an HTML fragment.
func RenderHTML(markdown string) (string, error) {
	var out strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &out); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return out.String(), nil
}

// sanitize keeps interpolated values from breaking the markdown
// table/quote structure.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}
