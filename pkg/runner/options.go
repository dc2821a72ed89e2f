package runner

import (
	"io"
	"log/slog"
	"time"
)

// DefaultInputBufferSize is the default number of decoded lines buffered
// between the reader goroutine and the loop.
const DefaultInputBufferSize = 64

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInput sets the NDJSON event source.
func WithInput(r io.Reader) Option {
	return func(rn *Runner) {
		rn.Input = r
	}
}

// WithOutput sets where result lines are written.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.Output = w
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rn *Runner) {
		rn.Logger = logger
	}
}

// WithTickInterval advances the layout on a timer. Zero disables the timer;
// ticks then only happen on explicit "tick" commands.
func WithTickInterval(d time.Duration) Option {
	return func(rn *Runner) {
		rn.TickInterval = d
	}
}

// WithFrames emits a frame line after every timer tick.
func WithFrames(enabled bool) Option {
	return func(rn *Runner) {
		rn.EmitFrames = enabled
	}
}

// WithInputBufferSize sets the capacity of the decoded input queue.
func WithInputBufferSize(n int) Option {
	return func(rn *Runner) {
		rn.bufferSize = n
	}
}
