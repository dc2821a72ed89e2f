package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/domain"
)

// Output line types.
const (
	MessageMutations = "mutations"
	MessageDiff      = "diff"
	MessageFrame     = "frame"
	MessageSnapshot  = "snapshot"
	MessageExport    = "export"
	MessageError     = "error"
)

// Commands accepted on input besides the editor events.
const (
	CommandTick     = "tick"
	CommandFrame    = "frame"
	CommandSnapshot = "snapshot"
	CommandExport   = "export"
)

// Message is one output line.
type Message struct {
	Type      string            `json:"type"`
	Mutations []domain.Mutation `json:"mutations,omitempty"`
	Diff      *domain.GraphDiff `json:"diff,omitempty"`
	Frame     *quiver.Frame     `json:"frame,omitempty"`
	Snapshot  *domain.Snapshot  `json:"snapshot,omitempty"`
	Text      string            `json:"text,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// line is one decoded input line, or the error that prevented decoding it.
type line struct {
	raw map[string]any
	err error
}

// lineWriter serializes Message lines; diffs arrive from editor callbacks.
type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{enc: json.NewEncoder(w)}
}

func (w *lineWriter) Write(m Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(m)
}

// pump reads NDJSON lines until EOF or ctx is done, then closes out.
// Blank lines are skipped.
func pump(ctx context.Context, r io.Reader, out chan<- line) {
	defer close(out)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), getMaxInputSize()+1)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		l := decodeLine(text)
		select {
		case out <- l:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case out <- line{err: fmt.Errorf("read input: %w", err)}:
		case <-ctx.Done():
		}
	}
}

func decodeLine(text string) line {
	text, err := SanitizeInput(text)
	if err != nil {
		return line{err: err}
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return line{err: fmt.Errorf("invalid json line: %w", err)}
	}
	if s, ok := raw["text"].(string); ok {
		clean, err := SanitizeInput(s)
		if err != nil {
			return line{err: err}
		}
		raw["text"] = clean
	}
	return line{raw: raw}
}
