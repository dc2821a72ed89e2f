package dsl

import (
	"strconv"

	"github.com/aretw0/quiver/pkg/domain"
)

type edge struct {
	target int
	label  string
}

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	id      int
	builder *Builder

	x, y    *float64
	fixed   bool
	initial bool
	final   bool
	edges   []edge
}

// At places the state. Unplaced states are positioned by the layout.
func (s *StateBuilder) At(x, y float64) *StateBuilder {
	s.x, s.y = &x, &y
	return s
}

// Pin marks the state as fixed so the layout never moves it.
func (s *StateBuilder) Pin() *StateBuilder {
	s.fixed = true
	return s
}

// Initial gives the state an initial marker.
func (s *StateBuilder) Initial() *StateBuilder {
	s.initial = true
	return s
}

// Final gives the state a final marker.
func (s *StateBuilder) Final() *StateBuilder {
	s.final = true
	return s
}

// Go adds a labeled transition to the target state.
// A repeated target replaces the earlier label: there is at most one
// transition per ordered pair.
func (s *StateBuilder) Go(target int, label string) *StateBuilder {
	for i := range s.edges {
		if s.edges[i].target == target {
			s.edges[i].label = label
			return s
		}
	}
	s.edges = append(s.edges, edge{target: target, label: label})
	return s
}

// Loop adds a self-loop.
func (s *StateBuilder) Loop(label string) *StateBuilder {
	return s.Go(s.id, label)
}

// State returns to the parent builder to declare another state.
func (s *StateBuilder) State(id int) *StateBuilder {
	return s.builder.State(id)
}

func (s *StateBuilder) record() domain.StateRecord {
	return domain.StateRecord{
		ID:    domain.ID(strconv.Itoa(s.id)),
		X:     s.x,
		Y:     s.y,
		Fixed: s.fixed,
	}
}
