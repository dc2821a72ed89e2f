package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Config    *config.Config
	Debug     bool
	SessionID string
	Automaton string
	// Document mirrors the graph into a shared redis document with this name.
	Document string
	Frames   bool
	Quiet    bool

	Input  io.Reader
	Output io.Writer
	Status io.Writer
}

// Execute runs an editor over NDJSON on stdin/stdout until EOF or a signal.
// With a session id, every flush is saved to the configured store and an
// existing session is resumed.
func Execute(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}
	logger := CreateLogger(cfg, opts.Debug)

	if !opts.Quiet {
		tui.PrintBanner(opts.Status, strings.TrimSpace(quiver.Version))
	}

	stack, err := OpenStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	snap, err := stack.Seed(ctx, opts.SessionID, opts.Automaton)
	if err != nil {
		return err
	}
	doc, err := stack.OpenDocument(ctx, opts.Document, snap)
	if err != nil {
		return err
	}

	r := runner.NewRunner(
		runner.WithInput(opts.Input),
		runner.WithOutput(opts.Output),
		runner.WithLogger(logger),
		runner.WithTickInterval(cfg.TickInterval()),
		runner.WithFrames(opts.Frames),
	)

	editorOpts := []quiver.Option{quiver.WithDiffListener(r.DiffListener())}
	if opts.SessionID != "" {
		editorOpts = append(editorOpts,
			quiver.WithSessionID(opts.SessionID),
			quiver.WithStore(stack.Store),
		)
	}
	if stack.Publisher != nil {
		editorOpts = append(editorOpts, quiver.WithPublisher(stack.Publisher))
	}
	editor, err := NewEditor(ctx, cfg, logger, doc, editorOpts...)
	if err != nil {
		return err
	}
	if opts.SessionID != "" {
		// Resumed or not, the store holds the session from the start.
		if err := stack.Store.Save(ctx, opts.SessionID, editor.Snapshot()); err != nil {
			return fmt.Errorf("failed to save session %s: %w", opts.SessionID, err)
		}
		if !opts.Quiet {
			printSystemMessage(opts.Status, "Session '%s' active.", opts.SessionID)
		}
	}

	if !opts.Quiet && isTerminal(opts.Input) {
		printSystemMessage(opts.Status, "Reading events from the terminal, one JSON object per line. Ctrl-D ends the session.")
	}

	runErr := r.Run(ctx, editor)
	if !opts.Quiet && isInterrupted(runErr) {
		printSystemMessage(opts.Status, "Interrupted.")
	}
	return handleExecutionError(runErr)
}
