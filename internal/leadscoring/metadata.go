package leadscoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MetadataExtractor pulls structured case metadata out of raw case
// text with a bounded-retry model call. Malformed responses trigger a
// corrective reprompt rather than an immediate failure.
type MetadataExtractor struct {
	model LanguageModel
	retry RetryPolicy
	sleep func(time.Duration)
}

func NewMetadataExtractor(model LanguageModel, retry RetryPolicy) *MetadataExtractor {
	return &MetadataExtractor{model: model, retry: retry, sleep: time.Sleep}
}

func (m *MetadataExtractor) Extract(ctx context.Context, caseText string) (map[string]any, error) {
	attempts := m.retry.Attempts()
	feedback := ""
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		prompt := caseText
		if feedback != "" {
			prompt += "\n\n" + feedback
		}
		resp, err := m.model.Invoke(ctx, metadataSystemPrompt, []Message{
			{Role: RoleUser, Content: prompt},
		}, nil)
		if err != nil {
			lastErr = err
			if attempt < attempts {
				m.sleep(m.retry.Delay)
				continue
			}
			break
		}

		clean := stripCodeFences(resp.Content)
		var meta map[string]any
		if err := json.Unmarshal([]byte(clean), &meta); err != nil {
			lastErr = fmt.Errorf("parse metadata json: %w", err)
			feedback = "Your previous response was not valid JSON. Respond with only the JSON object."
			continue
		}
		return meta, nil
	}
	return nil, &MetadataExtractionError{Attempts: attempts, Err: lastErr}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		parts := strings.SplitN(s, "\n", 2)
		if len(parts) == 2 {
			s = parts[1]
		}
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
