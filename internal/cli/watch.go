package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/adapters/nats"
	"github.com/aretw0/quiver/pkg/domain"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	URL string
	// SessionID limits the output to one session; empty watches all of them.
	SessionID string
	JSON      bool
	Output    io.Writer
}

// Watch prints the diffs published on NATS until ctx is done.
func Watch(ctx context.Context, opts WatchOptions) error {
	if opts.URL == "" {
		return fmt.Errorf("no NATS url configured")
	}
	sub, err := nats.NewSubscriber(opts.URL)
	if err != nil {
		return err
	}
	defer sub.Close()

	subject := nats.AllSubjects
	if opts.SessionID != "" {
		subject = nats.Subject(opts.SessionID)
	}
	diffs, cancel, err := sub.Subscribe(subject)
	if err != nil {
		return err
	}
	defer cancel()

	enc := json.NewEncoder(opts.Output)
	for {
		select {
		case <-ctx.Done():
			return nil
		case diff, ok := <-diffs:
			if !ok {
				return nil
			}
			if opts.JSON {
				if err := enc.Encode(diff); err != nil {
					return err
				}
				continue
			}
			printDiff(opts.Output, diff)
		}
	}
}

func printDiff(w io.Writer, d *domain.GraphDiff) {
	tui.Brand.Fprintf(w, "[%s]", d.SessionID)
	fmt.Fprintln(w)
	for _, s := range d.AddedStates {
		tui.Good.Fprintf(w, "  + state %s\n", s.ID)
	}
	for _, id := range d.RemovedStates {
		tui.Bad.Fprintf(w, "  - state %s\n", id)
	}
	for _, id := range d.PinnedStates {
		fmt.Fprintf(w, "  * pinned %s\n", id)
	}
	for _, t := range d.AddedTransitions {
		tui.Good.Fprintf(w, "  + %s -> %s %q\n", t.Source, t.Target, t.Label)
	}
	for _, t := range d.RemovedTransitions {
		tui.Bad.Fprintf(w, "  - %s -> %s %q\n", t.Source, t.Target, t.Label)
	}
	for _, t := range d.RelabeledTransitions {
		fmt.Fprintf(w, "  ~ %s -> %s %q\n", t.Source, t.Target, t.Label)
	}
}
