package leadscoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileRetriever fetches the raw text of a historical case file named
// in the vector-search context.
type FileRetriever interface {
	Retrieve(ctx context.Context, path string) (string, error)
}

const (
	fileToolTimeout   = 300 * time.Second
	fileTokenBudget   = 1000
	charsPerTokenEst  = 4
	truncationTrailer = "\n[content truncated]"
)

// FileContextTool exposes case file contents to the model. Files over
// the token budget are summarized when a summarizer is wired, else
// truncated.
type FileContextTool struct {
	retriever  FileRetriever
	summarizer *Summarizer
}

func NewFileContextTool(retriever FileRetriever, summarizer *Summarizer) *FileContextTool {
	return &FileContextTool{retriever: retriever, summarizer: summarizer}
}

func (t *FileContextTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "get_file_context",
		Description: "Read the full text of a historical case file. Use the source file path shown in the historical case summaries. Long files are summarized.",
		Properties: map[string]any{
			"filepath": map[string]any{
				"type":        "string",
				"description": "Path of the case file to read",
			},
		},
		Required: []string{"filepath"},
	}
}

func (t *FileContextTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Filepath string `json:"filepath"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("bad arguments: %w", err)
	}
	if strings.TrimSpace(req.Filepath) == "" {
		return "", fmt.Errorf("filepath is required")
	}

	ctx, cancel := context.WithTimeout(ctx, fileToolTimeout)
	defer cancel()

	content, err := t.retriever.Retrieve(ctx, req.Filepath)
	if err != nil {
		return "", err
	}
	if estimateTokens(content) <= fileTokenBudget {
		return content, nil
	}
	if t.summarizer != nil {
		summary, err := t.summarizer.Summarize(ctx, content)
		if err == nil {
			return fmt.Sprintf("[summarized from %s]\n%s", req.Filepath, summary), nil
		}
		// Fall through to truncation when summarization fails; a
		// partial file still beats an absorbed error.
	}
	return content[:fileTokenBudget*charsPerTokenEst] + truncationTrailer, nil
}

// estimateTokens approximates token count at four characters per
// token, matching the budget the summarizer was tuned for.
func estimateTokens(s string) int {
	return len(s) / charsPerTokenEst
}

// LocalFileRetriever serves case files from a directory root and
// refuses paths that escape it.
type LocalFileRetriever struct {
	root string
}

func NewLocalFileRetriever(root string) *LocalFileRetriever {
	return &LocalFileRetriever{root: root}
}

func (r *LocalFileRetriever) Retrieve(_ context.Context, path string) (string, error) {
	full := filepath.Join(r.root, filepath.Clean("/"+path))
	rel, err := filepath.Rel(r.root, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q outside case directory", path)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read case file: %w", err)
	}
	return string(data), nil
}
