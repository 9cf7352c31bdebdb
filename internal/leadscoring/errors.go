package leadscoring

import (
	"fmt"
	"time"
)

// ModelInvocationError wraps a transport or API failure from the
// language model. It is fatal to the session: the caller gets a
// degraded ScoreResult rather than a retry.
type ModelInvocationError struct {
	Stage string
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed during %s: %v", e.Stage, e.Err)
}

func (e *ModelInvocationError) Unwrap() error { return e.Err }

// ToolExecutionError is never surfaced to the session caller; it is
// absorbed into the conversation as an error tool result. It exists so
// tool implementations can wrap their causes uniformly.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// MetadataExtractionError reports that structured metadata could not
// be pulled from case text within the retry budget.
type MetadataExtractionError struct {
	Attempts int
	Err      error
}

func (e *MetadataExtractionError) Error() string {
	return fmt.Sprintf("metadata extraction failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *MetadataExtractionError) Unwrap() error { return e.Err }

// RetryPolicy bounds how often a recoverable LLM operation is retried.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Delay: time.Second}
}

// Attempts is the total invocation count the policy allows.
func (p RetryPolicy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}
