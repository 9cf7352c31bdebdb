package leadscoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"leadscore/internal/vectorsearch"
)

const defaultVectorToolTopK = 3

// VectorContextTool lets the model re-query the historical case index
// mid-session when the initial context lacks comparable cases.
type VectorContextTool struct {
	searcher vectorsearch.Searcher
	topK     int
}

func NewVectorContextTool(searcher vectorsearch.Searcher, topK int) *VectorContextTool {
	if topK <= 0 {
		topK = defaultVectorToolTopK
	}
	return &VectorContextTool{searcher: searcher, topK: topK}
}

func (t *VectorContextTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "search_similar_cases",
		Description: "Search the historical case index for cases similar to a query. Use when the provided context lacks comparable injuries, venues, or outcomes.",
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Injury, venue, or outcome description to search for",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of cases to return (optional)",
			},
		},
		Required: []string{"query"},
	}
}

func (t *VectorContextTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Query string `json:"query"`
		TopK  int    `json:"top_k"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if strings.TrimSpace(req.Query) == "" {
		return "", fmt.Errorf("query is required")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = t.topK
	}
	matches, err := t.searcher.Search(ctx, req.Query, topK)
	if err != nil {
		return "", err
	}
	return vectorsearch.FormatContext(matches), nil
}
