package leadscoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TranscriptSink records a finished session's conversation for audit.
// Dump failures are logged by the scorer, never fatal.
type TranscriptSink interface {
	Dump(leadID string, conversation []Message) error
}

// JSONLTranscript writes one file per session, one JSON message per
// line, under a fixed directory.
type JSONLTranscript struct {
	dir string
}

func NewJSONLTranscript(dir string) (*JSONLTranscript, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transcript dir: %w", err)
	}
	return &JSONLTranscript{dir: dir}, nil
}

func (t *JSONLTranscript) Dump(leadID string, conversation []Message) error {
	name := fmt.Sprintf("%s-%s.jsonl", sanitizeID(leadID), time.Now().UTC().Format("20060102T150405"))
	f, err := os.Create(filepath.Join(t.dir, name))
	if err != nil {
		return fmt.Errorf("create transcript: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, msg := range conversation {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("encode transcript line: %w", err)
		}
	}
	return nil
}

func sanitizeID(id string) string {
	if id == "" {
		return "lead"
	}
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
