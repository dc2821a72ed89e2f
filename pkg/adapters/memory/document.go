package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/quiver/pkg/domain"
)

// Observer receives the keys changed since the previous flush.
type Observer func(ctx context.Context, changes map[string]any)

// Document implements ports.Document as a local map.
// Set values are visible to Get immediately; observers only hear about
// them on Flush.
type Document struct {
	mu        sync.RWMutex
	values    map[string]any
	pending   map[string]any
	observers []Observer
	flushes   int
}

// NewDocument creates a document holding the given initial values.
func NewDocument(initial map[string]any) *Document {
	values := make(map[string]any, len(initial))
	maps.Copy(values, initial)
	return &Document{
		values:  values,
		pending: make(map[string]any),
	}
}

// NewSnapshotDocument creates a document seeded with the three graph keys of snap.
// A nil snap seeds an empty graph.
func NewSnapshotDocument(snap *domain.Snapshot) *Document {
	if snap == nil {
		snap = domain.NewSnapshot()
	}
	return NewDocument(map[string]any{
		domain.KeyStates:      snap.States,
		domain.KeyTransitions: snap.Transitions,
		domain.KeyLastStateID: snap.LastStateID,
	})
}

// Observe registers an observer called on every flush with pending changes.
func (d *Document) Observe(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

// Get returns the current value for key.
func (d *Document) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.values[key]
	return v, ok
}

// Set replaces the value for key and marks it pending.
func (d *Document) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[key] = value
	d.pending[key] = value
}

// Flush hands pending changes to the observers.
// Observers run outside the document lock and may call Get.
func (d *Document) Flush(ctx context.Context) error {
	d.mu.Lock()
	d.flushes++
	changes := d.pending
	d.pending = make(map[string]any)
	observers := append([]Observer(nil), d.observers...)
	d.mu.Unlock()

	if len(changes) == 0 {
		return nil
	}
	for _, o := range observers {
		o(ctx, changes)
	}
	return nil
}

// Flushes reports how many times Flush was called.
func (d *Document) Flushes() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.flushes
}
