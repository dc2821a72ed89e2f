package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/internal/logging"
)

// CreateLogger configures the application logger.
// Debug forces the debug level; otherwise the configured level applies.
func CreateLogger(cfg *config.Config, debug bool) *slog.Logger {
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		format = logging.FormatText
	}
	if debug {
		return logging.New(slog.LevelDebug, format)
	}
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level, format)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError turns interruptions into a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
