package vectorsearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const defaultClassName = "HistoricalCase"

// WeaviateSearcher implements Searcher against a Weaviate class whose
// vectorizer module embeds queries server-side (nearText).
type WeaviateSearcher struct {
	client    *weaviate.Client
	className string
}

func NewWeaviateSearcher(scheme, host, className string) (*WeaviateSearcher, error) {
	if host == "" {
		return nil, fmt.Errorf("weaviate host not configured")
	}
	if scheme == "" {
		scheme = "http"
	}
	if className == "" {
		className = defaultClassName
	}
	client, err := weaviate.NewClient(weaviate.Config{Scheme: scheme, Host: host})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return &WeaviateSearcher{client: client, className: className}, nil
}

func (s *WeaviateSearcher) Search(ctx context.Context, query string, topK int) ([]CaseMatch, error) {
	if topK <= 0 {
		topK = 5
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "caseId"},
		{Name: "source"},
		{Name: "jurisdiction"},
		{Name: "settlementValue"},
		{Name: "summary"},
		{Name: "_additional", Fields: []graphql.Field{
			{Name: "distance"},
		}},
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate search failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate graphql error: %s", result.Errors[0].Message)
	}

	return parseMatches(result, s.className)
}

// caseRow mirrors the GraphQL property names of the historical case
// class. Weaviate hands back untyped JSON, so rows go through one
// marshal/unmarshal round trip into this shape.
type caseRow struct {
	CaseID          string `json:"caseId"`
	Source          string `json:"source"`
	Jurisdiction    string `json:"jurisdiction"`
	SettlementValue string `json:"settlementValue"`
	Summary         string `json:"summary"`
	Additional      struct {
		Distance float64 `json:"distance"`
	} `json:"_additional"`
}

func parseMatches(resp *models.GraphQLResponse, className string) ([]CaseMatch, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil graphql response")
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql data: %w", err)
	}

	var parsed struct {
		Get map[string][]caseRow `json:"Get"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal graphql data: %w", err)
	}

	rows := parsed.Get[className]
	matches := make([]CaseMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, CaseMatch{
			CaseID:          row.CaseID,
			Source:          row.Source,
			Jurisdiction:    row.Jurisdiction,
			SettlementValue: row.SettlementValue,
			Summary:         row.Summary,
			Distance:        row.Additional.Distance,
		})
	}
	return matches, nil
}
