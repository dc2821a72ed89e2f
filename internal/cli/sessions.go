package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aretw0/quiver/internal/presentation/tui"
	"github.com/aretw0/quiver/pkg/adapters/sqlite"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/persistence/middleware"
)

// ListSessions prints the stored sessions as a table.
// The sqlite store answers from its summary columns; other stores load each snapshot.
func ListSessions(ctx context.Context, w io.Writer, st *Stack) error {
	headers := []string{"SESSION", "STATES", "TRANSITIONS", "LAST ID"}

	if db, ok := middleware.Unwrap(st.Store).(*sqlite.Store); ok {
		sums, err := db.Summaries(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(sums))
		for _, s := range sums {
			rows = append(rows, []string{
				s.ID, strconv.Itoa(s.StateCount), strconv.Itoa(s.TransitionCount),
				strconv.Itoa(s.LastStateID), s.UpdatedAt,
			})
		}
		printSessions(w, append(headers, "UPDATED"), rows)
		return nil
	}

	ids, err := st.Store.List(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		snap, err := st.Store.Load(ctx, id)
		if errors.Is(err, domain.ErrSessionNotFound) {
			continue // expired between List and Load
		}
		if err != nil {
			return err
		}
		rows = append(rows, []string{id, strconv.Itoa(len(snap.States)), strconv.Itoa(len(snap.Transitions)), strconv.Itoa(snap.LastStateID)})
	}
	printSessions(w, headers, rows)
	return nil
}

func printSessions(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}
	tui.Table(w, headers, rows)
}
