package leadscoring

import (
	"context"
	"fmt"
	"strings"
)

const summarizeInputTokenCap = 13000

// Summarizer condenses long case text with a dedicated model call.
// Input beyond the token cap is truncated before the call so one
// oversized file cannot blow the context window.
type Summarizer struct {
	model LanguageModel
}

func NewSummarizer(model LanguageModel) *Summarizer {
	return &Summarizer{model: model}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to summarize")
	}
	if estimateTokens(text) > summarizeInputTokenCap {
		text = text[:summarizeInputTokenCap*charsPerTokenEst]
	}
	resp, err := s.model.Invoke(ctx, summarizeSystemPrompt, []Message{
		{Role: RoleUser, Content: text},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("summarize call: %w", err)
	}
	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("summarizer returned empty response")
	}
	return summary, nil
}
