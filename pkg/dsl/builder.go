package dsl

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/aretw0/quiver/pkg/domain"
)

// ErrInvalidGraph is returned by Build when a transition names an undeclared state.
var ErrInvalidGraph = errors.New("invalid graph")

// Builder manages the graph construction.
type Builder struct {
	states map[int]*StateBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		states: make(map[int]*StateBuilder),
	}
}

// State declares an ordinary state.
// If the state already exists, it returns the existing builder.
func (b *Builder) State(id int) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	return sb
}

// Build compiles the declared states into a snapshot.
// States are ordered by id and LastStateID is the highest id declared.
func (b *Builder) Build() (*domain.Snapshot, error) {
	ids := make([]int, 0, len(b.states))
	for id := range b.states {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	snap := domain.NewSnapshot()
	for _, id := range ids {
		sb := b.states[id]
		if id < 0 {
			return nil, fmt.Errorf("%w: negative state id %d", ErrInvalidGraph, id)
		}
		snap.States = append(snap.States, sb.record())
		snap.LastStateID = max(snap.LastStateID, id)
	}

	for _, id := range ids {
		sb := b.states[id]
		src := domain.ID(strconv.Itoa(id))
		if sb.initial {
			snap.Transitions = append(snap.Transitions, domain.TransitionRecord{Target: src})
		}
		if sb.final {
			snap.Transitions = append(snap.Transitions, domain.TransitionRecord{Source: src})
		}
		for _, e := range sb.edges {
			if _, ok := b.states[e.target]; !ok {
				return nil, fmt.Errorf("%w: transition %d -> %d targets an undeclared state", ErrInvalidGraph, id, e.target)
			}
			snap.Transitions = append(snap.Transitions, domain.TransitionRecord{
				Source: src,
				Target: domain.ID(strconv.Itoa(e.target)),
				Label:  e.label,
			})
		}
	}
	return snap, nil
}

// MustBuild is Build for fixtures known to be valid. It panics on error.
func (b *Builder) MustBuild() *domain.Snapshot {
	snap, err := b.Build()
	if err != nil {
		panic(err)
	}
	return snap
}
