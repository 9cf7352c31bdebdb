package leadscoring

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Scorer runs bounded agentic scoring sessions. It holds only
// immutable collaborators and is safe for concurrent use; all mutable
// state lives in the per-request session.
type Scorer struct {
	model      LanguageModel
	tools      *Registry
	adjuster   *Adjuster
	cfg        SessionConfig
	transcript TranscriptSink
}

func NewScorer(model LanguageModel, tools *Registry, adjuster *Adjuster, cfg SessionConfig) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{model: model, tools: tools, adjuster: adjuster, cfg: cfg}, nil
}

// WithTranscript enables per-session conversation dumps for audit.
func (s *Scorer) WithTranscript(sink TranscriptSink) *Scorer {
	s.transcript = sink
	return s
}

// session is the mutable state of one scoring run. Never shared, never
// reused.
type session struct {
	conversation []Message
	toolCalls    int
	usage        []string
}

// Score runs the full loop for one lead: initial model turn, tool
// round trips until the stopping policy fires, then a final scoring
// pass and jurisdiction adjustment. A model failure yields a degraded
// result with StopModelError rather than an error return; the caller
// always gets a ScoreResult it can record.
func (s *Scorer) Score(ctx context.Context, lead Lead, historicalContext string) ScoreResult {
	sess := &session{}
	sess.conversation = s.initialConversation(lead, historicalContext)

	resp, err := s.invoke(ctx, sess)
	if err != nil {
		return s.failedResult(lead, sess, "initial turn", err)
	}

	final, stop, err := s.toolLoop(ctx, sess, resp)
	if err != nil {
		return s.failedResult(lead, sess, "scoring loop", err)
	}

	s.dumpTranscript(lead, sess)
	return s.buildResult(lead, sess, final, stop)
}

func (s *Scorer) initialConversation(lead Lead, historicalContext string) []Message {
	budget := fmt.Sprintf(
		"Your tool usage count is at 0 out of %d maximum tool calls. You MUST use at least 1 tool call before your final score.",
		s.cfg.ToolCallLimit)
	return []Message{
		{Role: RoleUser, Content: budget},
		{Role: RoleUser, Content: "**Historical Case Summaries for Reference:**\n" + historicalContext},
		{Role: RoleUser, Content: lead.Description},
	}
}

// toolLoop drives MODEL_TURN / TOOL_EXECUTION rounds until a stop
// condition holds, then returns the final assistant content and the
// reason the loop ended.
func (s *Scorer) toolLoop(ctx context.Context, sess *session, resp *ModelResponse) (string, StopReason, error) {
	for {
		// Limit is checked before confidence so an exhausted budget
		// always wins, even on a confident turn.
		if sess.toolCalls >= s.cfg.ToolCallLimit {
			content, err := s.finalize(ctx, sess, resp, StopToolLimit)
			return content, StopToolLimit, err
		}
		confidence := ExtractConfidence(resp.Content)
		if confidence > 0 && confidence >= s.cfg.ConfidenceThreshold {
			content, err := s.finalize(ctx, sess, resp, StopConfidence)
			return content, StopConfidence, err
		}

		if len(resp.ToolCalls) == 0 {
			// No tools requested and below threshold: the turn is the
			// model's settled answer, take it as the final rationale.
			sess.conversation = append(sess.conversation,
				Message{Role: RoleAssistant, Content: resp.Content})
			return resp.Content, StopNoTools, nil
		}

		results := s.executeCalls(ctx, sess, resp.ToolCalls)
		sess.conversation = append(sess.conversation,
			Message{Role: RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls},
			Message{Role: RoleUser, ToolResults: results},
		)

		next, err := s.invoke(ctx, sess)
		if err != nil {
			return "", StopModelError, err
		}
		resp = next
	}
}

// executeCalls runs a turn's tool requests. The counter moves on
// failures too; a model that keeps calling broken tools still runs out
// of budget.
func (s *Scorer) executeCalls(ctx context.Context, sess *session, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, call := range calls {
		result := s.tools.Execute(ctx, call)
		sess.toolCalls++
		sess.usage = append(sess.usage, DescribeCall(call))
		if result.IsError {
			log.Printf("leadscoring: tool call %d absorbed error: %s", sess.toolCalls, result.Content)
		}
		results = append(results, result)
	}
	return results
}

// finalize issues the last model turn. Pending tool calls on the
// current response are resolved first so the conversation stays
// well-formed, then the stop reason and a tool usage summary are
// injected. Tool requests in the final response are not honored.
func (s *Scorer) finalize(ctx context.Context, sess *session, resp *ModelResponse, stop StopReason) (string, error) {
	if len(resp.ToolCalls) > 0 {
		results := s.executeCalls(ctx, sess, resp.ToolCalls)
		sess.conversation = append(sess.conversation,
			Message{Role: RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls},
			Message{Role: RoleUser, ToolResults: results},
		)
	} else if resp.Content != "" {
		sess.conversation = append(sess.conversation,
			Message{Role: RoleAssistant, Content: resp.Content})
	}

	var reason string
	switch stop {
	case StopToolLimit:
		reason = "Tool call limit reached, provide your final lead score analysis."
	default:
		reason = fmt.Sprintf("Confidence threshold of %d reached, provide your final lead score analysis.", s.cfg.ConfidenceThreshold)
	}
	summary := fmt.Sprintf(
		"Tool Usage Summary: You made %d tool calls out of %d maximum. %s Include this exact information in your '**6. Analysis Depth & Tool Usage:**' section.",
		sess.toolCalls, s.cfg.ToolCallLimit, s.usageDetails(sess))
	sess.conversation = append(sess.conversation,
		Message{Role: RoleUser, Content: reason + "\n\n" + summary})

	final, err := s.invoke(ctx, sess)
	if err != nil {
		return "", err
	}
	if len(final.ToolCalls) > 0 {
		log.Printf("leadscoring: ignoring %d tool calls requested during final pass", len(final.ToolCalls))
	}
	sess.conversation = append(sess.conversation,
		Message{Role: RoleAssistant, Content: final.Content})
	return final.Content, nil
}

func (s *Scorer) usageDetails(sess *session) string {
	if len(sess.usage) == 0 {
		return "No tools were used."
	}
	return "Calls: " + strings.Join(sess.usage, "; ") + "."
}

func (s *Scorer) invoke(ctx context.Context, sess *session) (*ModelResponse, error) {
	var specs []ToolSpec
	if s.tools != nil {
		specs = s.tools.Specs()
	}
	return s.model.Invoke(ctx, scoringSystemPrompt, sess.conversation, specs)
}

func (s *Scorer) buildResult(lead Lead, sess *session, rationale string, stop StopReason) ScoreResult {
	raw := ExtractScore(rationale)
	confidence := ExtractConfidence(rationale)
	jurisdiction := ExtractJurisdiction(rationale)

	modifier, final := s.adjuster.Apply(raw, jurisdiction)
	if final != raw {
		rationale = RewriteScoreLine(rationale, final)
		log.Printf("leadscoring: lead %s score adjusted %d -> %d by %s modifier %.3f",
			lead.ID, raw, final, jurisdiction, modifier)
	}

	return ScoreResult{
		LeadID:          lead.ID,
		RawScore:        raw,
		Confidence:      confidence,
		Jurisdiction:    jurisdiction,
		ModifierApplied: modifier,
		FinalScore:      final,
		Rationale:       rationale,
		ToolCallsUsed:   sess.toolCalls,
		StopReason:      stop,
	}
}

func (s *Scorer) failedResult(lead Lead, sess *session, stage string, err error) ScoreResult {
	werr := &ModelInvocationError{Stage: stage, Err: err}
	log.Printf("leadscoring: lead %s failed: %v", lead.ID, werr)
	return ScoreResult{
		LeadID:          lead.ID,
		RawScore:        0,
		ModifierApplied: 1.0,
		FinalScore:      0,
		Rationale:       "An error occurred while scoring the lead: " + werr.Error(),
		ToolCallsUsed:   sess.toolCalls,
		StopReason:      StopModelError,
	}
}

func (s *Scorer) dumpTranscript(lead Lead, sess *session) {
	if s.transcript == nil {
		return
	}
	if err := s.transcript.Dump(lead.ID, sess.conversation); err != nil {
		log.Printf("leadscoring: transcript dump for lead %s failed: %v", lead.ID, err)
	}
}
