package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/domain"
)

// Runner drives one editor from a line-delimited JSON stream.
// A single goroutine owns the editor: it selects over decoded input lines
// and the tick timer, so hosts never need their own locking.
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	TickInterval time.Duration
	EmitFrames   bool

	bufferSize int
	out        *lineWriter
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:      os.Stdin,
		Output:     os.Stdout,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		bufferSize: DefaultInputBufferSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.out = newLineWriter(r.Output)
	return r
}

// DiffListener returns a callback for quiver.WithDiffListener that writes
// every flushed diff as a "diff" line.
func (r *Runner) DiffListener() func(*domain.GraphDiff) {
	return func(diff *domain.GraphDiff) {
		if err := r.out.Write(Message{Type: MessageDiff, Diff: diff}); err != nil {
			r.Logger.Warn("failed to write diff", "error", err)
		}
	}
}

// Run processes input until EOF (returning nil) or ctx is cancelled
// (returning ctx.Err()). Malformed lines produce "error" lines and do not stop
// the loop; only output failures do.
func (r *Runner) Run(ctx context.Context, editor *quiver.Editor) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan line, r.bufferSize)
	go pump(ctx, r.Input, lines)

	var ticks <-chan time.Time
	if r.TickInterval > 0 {
		ticker := time.NewTicker(r.TickInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	r.Logger.Debug("runner started", "session_id", editor.SessionID(), "tick_interval", r.TickInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticks:
			editor.Tick()
			if r.EmitFrames {
				if err := r.emitFrame(editor); err != nil {
					return err
				}
			}

		case l, ok := <-lines:
			if !ok {
				r.Logger.Debug("input closed", "session_id", editor.SessionID())
				return nil
			}
			if err := r.handle(ctx, editor, l); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) handle(ctx context.Context, editor *quiver.Editor, l line) error {
	if l.err != nil {
		return r.fail(l.err)
	}

	kind, _ := l.raw["type"].(string)
	switch kind {
	case CommandTick:
		n := 1
		if v, ok := l.raw["n"].(float64); ok && v >= 1 {
			n = int(v)
		}
		for range n {
			editor.Tick()
		}
		return r.emitFrame(editor)

	case CommandFrame:
		return r.emitFrame(editor)

	case CommandSnapshot:
		return r.write(Message{Type: MessageSnapshot, Snapshot: editor.Snapshot()})

	case CommandExport:
		format, _ := l.raw["format"].(string)
		text, err := editor.Export(format)
		if err != nil {
			return r.fail(err)
		}
		return r.write(Message{Type: MessageExport, Text: text})
	}

	muts, err := editor.DispatchRaw(ctx, l.raw)
	if err != nil {
		return r.fail(err)
	}
	if len(muts) == 0 {
		return nil
	}
	return r.write(Message{Type: MessageMutations, Mutations: muts})
}

func (r *Runner) emitFrame(editor *quiver.Editor) error {
	frame := editor.Frame()
	return r.write(Message{Type: MessageFrame, Frame: &frame})
}

// fail reports a recoverable input error as an output line.
func (r *Runner) fail(err error) error {
	r.Logger.Debug("input rejected", "error", err)
	return r.write(Message{Type: MessageError, Error: err.Error()})
}

func (r *Runner) write(m Message) error {
	if err := r.out.Write(m); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	return nil
}

// IsCancel reports whether err is the normal end of a signal-driven run.
func IsCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
