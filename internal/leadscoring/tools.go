package leadscoring

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ToolSpec describes a tool to the model. Properties holds the JSON
// schema of the arguments object; Required names the mandatory keys.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Tool is a model-callable operation. Execute returns the text handed
// back as the tool result; an error is absorbed by the registry, never
// propagated to the session.
type Tool interface {
	Spec() ToolSpec
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the tool set for scoring sessions. It is immutable
// after construction and shared across sessions; per-session counting
// lives in the session itself.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Spec().Name
		if _, dup := r.tools[name]; dup {
			continue
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r
}

// Specs returns tool descriptions in registration order.
func (r *Registry) Specs() []ToolSpec {
	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Execute runs one tool call and always produces a result the model
// can read. Failures, including unknown tool names, become error-text
// results with IsError set; the conversation continues either way.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	tool, ok := r.tools[call.Name]
	if !ok {
		return ToolResult{
			ToolCallID: call.ToolCallID(),
			Content:    fmt.Sprintf("Error: unknown tool %q", call.Name),
			IsError:    true,
		}
	}
	out, err := tool.Execute(ctx, call.Args)
	if err != nil {
		werr := &ToolExecutionError{Tool: call.Name, Err: err}
		return ToolResult{
			ToolCallID: call.ToolCallID(),
			Content:    "Error: " + werr.Error(),
			IsError:    true,
		}
	}
	return ToolResult{ToolCallID: call.ToolCallID(), Content: out}
}

// ToolCallID returns the call's ID, generating a stable placeholder
// when the provider omitted one.
func (c ToolCall) ToolCallID() string {
	if c.ID != "" {
		return c.ID
	}
	return "call_" + c.Name
}

// DescribeCall renders a tool call for usage summaries, highlighting
// the filepath argument when present.
func DescribeCall(call ToolCall) string {
	var args map[string]any
	if err := json.Unmarshal(call.Args, &args); err == nil {
		if fp, ok := args["filepath"].(string); ok && fp != "" {
			return fmt.Sprintf("%s(filepath=%q)", call.Name, fp)
		}
		if len(args) > 0 {
			keys := make([]string, 0, len(args))
			for k := range args {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
			}
			return fmt.Sprintf("%s(%s)", call.Name, strings.Join(parts, ", "))
		}
	}
	return call.Name + "()"
}
