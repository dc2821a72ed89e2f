package ports

import (
	"context"

	"github.com/aretw0/quiver/pkg/domain"
)

// AutomatonLibrary is a named collection of automata.
// Sessions can be seeded from it and editors can save back to it.
type AutomatonLibrary interface {
	// Get returns the automaton stored under name.
	// Returns domain.ErrAutomatonNotFound if it does not exist.
	Get(ctx context.Context, name string) (*domain.Snapshot, error)

	// Put stores snap under name, replacing any previous version.
	Put(ctx context.Context, name string, snap *domain.Snapshot) error

	// Names lists the automata in the library.
	Names(ctx context.Context) ([]string, error)
}
