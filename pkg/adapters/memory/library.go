package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/quiver/pkg/domain"
)

// Library implements ports.AutomatonLibrary using an in-memory map.
type Library struct {
	mu       sync.RWMutex
	automata map[string]*domain.Snapshot
}

// NewLibrary creates a library seeded with the given automata.
func NewLibrary(seed map[string]*domain.Snapshot) *Library {
	automata := make(map[string]*domain.Snapshot, len(seed))
	for name, snap := range seed {
		automata[name] = snap.Clone()
	}
	return &Library{automata: automata}
}

// Get returns a copy of the automaton stored under name.
func (l *Library) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap, ok := l.automata[name]
	if !ok {
		return nil, domain.ErrAutomatonNotFound
	}
	return snap.Clone(), nil
}

// Put stores a copy of snap under name.
func (l *Library) Put(ctx context.Context, name string, snap *domain.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.automata[name] = snap.Clone()
	return nil
}

// Names returns all automaton names, sorted.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.automata))
	for name := range l.automata {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
