package leadscoring

import (
	"encoding/json"
	"fmt"
	"time"
)

// Lead is an incoming case description to be valued. Immutable once
// constructed; the session never mutates it.
type Lead struct {
	ID          string `json:"lead_id"`
	Description string `json:"description"`
}

// StopReason records why the scoring loop handed control to the final
// scoring pass.
type StopReason string

const (
	StopToolLimit  StopReason = "tool_call_limit"
	StopConfidence StopReason = "confidence_threshold"
	StopNoTools    StopReason = "model_complete"
	StopModelError StopReason = "model_error"
)

// ScoreResult is the outcome of one scoring session. FinalScore is
// RawScore after the jurisdiction modifier, clamped to [1,100];
// Rationale carries the model's full analysis with the score line
// rewritten in place when a modifier applied.
type ScoreResult struct {
	LeadID          string     `json:"lead_id"`
	RawScore        int        `json:"raw_score"`
	Confidence      int        `json:"confidence"`
	Jurisdiction    string     `json:"jurisdiction"`
	ModifierApplied float64    `json:"modifier_applied"`
	FinalScore      int        `json:"final_score"`
	Rationale       string     `json:"rationale"`
	ToolCallsUsed   int        `json:"tool_calls_used"`
	StopReason      StopReason `json:"stop_reason"`
}

// Role of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the scoring conversation. An assistant turn
// may carry ToolCalls; the following user turn carries the matching
// ToolResults.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

// ToolCall is a model request to run a named tool.
type ToolCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// ToolResult answers one ToolCall. A failed execution sets IsError and
// puts the error text in Content; the model sees it as any other
// result.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

const (
	defaultToolCallLimit       = 5
	defaultConfidenceThreshold = 80
	defaultModelTimeout        = 120 * time.Second
)

// SessionConfig bounds one scoring session. The zero value is usable
// after Validate fills in defaults.
type SessionConfig struct {
	ToolCallLimit       int           `yaml:"tool_call_limit"`
	ConfidenceThreshold int           `yaml:"confidence_threshold"`
	ModelTimeout        time.Duration `yaml:"model_timeout"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ToolCallLimit:       defaultToolCallLimit,
		ConfidenceThreshold: defaultConfidenceThreshold,
		ModelTimeout:        defaultModelTimeout,
	}
}

// Validate applies defaults to zero fields and rejects out-of-range
// values. ToolCallLimit must land in [1,20], ConfidenceThreshold in
// [0,100].
func (c *SessionConfig) Validate() error {
	if c.ToolCallLimit == 0 {
		c.ToolCallLimit = defaultToolCallLimit
	}
	if c.ToolCallLimit < 1 || c.ToolCallLimit > 20 {
		return fmt.Errorf("tool_call_limit %d outside [1,20]", c.ToolCallLimit)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 100 {
		return fmt.Errorf("confidence_threshold %d outside [0,100]", c.ConfidenceThreshold)
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.ModelTimeout <= 0 {
		c.ModelTimeout = defaultModelTimeout
	}
	return nil
}
