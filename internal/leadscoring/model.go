package leadscoring

import "context"

// ModelResponse is one assistant turn: free text plus any tool calls
// the model wants executed before it continues.
type ModelResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// LanguageModel is the session's single seam to an LLM provider. One
// synchronous call per turn, no streaming. Implementations receive the
// full conversation and the tool specs on every invocation.
type LanguageModel interface {
	Invoke(ctx context.Context, system string, conversation []Message, tools []ToolSpec) (*ModelResponse, error)
}
