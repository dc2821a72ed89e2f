// Package automaton holds the canonical graph of an editor session.
//
// Every mutation replaces the state and transition slices wholesale, so a
// caller holding a previous slice never observes an in-place change, and bumps
// the revision the layout engine watches to reseed.
package automaton

import (
	"slices"
	"strconv"

	"github.com/aretw0/quiver/pkg/domain"
)

// Graph is the canonical store of states and transitions.
// It is not safe for concurrent use; the interaction controller is its only writer.
type Graph struct {
	states      []*domain.State
	transitions []*domain.Transition
	revision    uint64

	// highWater is the largest Visible id ever held in this session.
	highWater int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		states:      []*domain.State{},
		transitions: []*domain.Transition{},
		highWater:   domain.NoStateID,
	}
}

// States returns the current state collection. Callers must not modify it.
func (g *Graph) States() []*domain.State { return g.states }

// Transitions returns the current transition collection. Callers must not modify it.
func (g *Graph) Transitions() []*domain.Transition { return g.transitions }

// Revision changes every time a collection is replaced.
func (g *Graph) Revision() uint64 { return g.revision }

// Lookup finds a state by its boundary id.
func (g *Graph) Lookup(id string) *domain.State {
	for _, s := range g.states {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Classify reports whether s is rendered.
func (g *Graph) Classify(s *domain.State) domain.Visibility {
	return domain.Classify(s)
}

// LastStateID is the largest integer id among Visible states, or domain.NoStateID.
func (g *Graph) LastStateID() int {
	last := domain.NoStateID
	for _, s := range g.states {
		if n, ok := domain.IntID(s.ID); ok && n > last {
			last = n
		}
	}
	return last
}

// NextFreeID is one past the largest Visible id this session has held.
// Deleting the current maximum does not make its id available again.
func (g *Graph) NextFreeID() int {
	return max(g.LastStateID(), g.highWater) + 1
}

// AddState creates an ordinary state at pos with the next free id.
func (g *Graph) AddState(pos domain.Point) *domain.State {
	s := domain.NewState(strconv.Itoa(g.NextFreeID()))
	s.X, s.Y, s.Placed = pos.X, pos.Y, true
	g.insert(s)
	return s
}

func (g *Graph) insert(s *domain.State) {
	if n, ok := domain.IntID(s.ID); ok && n > g.highWater {
		g.highWater = n
	}
	g.states = append(slices.Clip(g.states), s)
	g.revision++
}

// RemoveState deletes s, every transition touching it and, for an ordinary
// state, its initial and final markers with their arrows.
// It reports false if s is not part of the graph.
func (g *Graph) RemoveState(s *domain.State) bool {
	if s == nil || !slices.Contains(g.states, s) {
		return false
	}

	doomed := []*domain.State{s}
	if s.Role == domain.RoleOrdinary {
		for _, role := range []domain.Role{domain.RoleInitialMarker, domain.RoleFinalMarker} {
			if m := g.FindPseudoState(s.ID, role); m != nil {
				doomed = append(doomed, m)
			}
		}
	}

	g.states = slices.DeleteFunc(slices.Clone(g.states), func(st *domain.State) bool {
		return slices.Contains(doomed, st)
	})
	g.transitions = slices.DeleteFunc(slices.Clone(g.transitions), func(t *domain.Transition) bool {
		for _, d := range doomed {
			if t.Touches(d) {
				return true
			}
		}
		return false
	})
	g.revision++
	return true
}

// FindTransition returns the transition src -> dst, if any.
func (g *Graph) FindTransition(src, dst *domain.State) *domain.Transition {
	for _, t := range g.transitions {
		if t.Source == src && t.Target == dst {
			return t
		}
	}
	return nil
}

// AddOrGetTransition links src to dst with label unless they are already linked.
// The existing transition is returned untouched in that case and created is false.
func (g *Graph) AddOrGetTransition(src, dst *domain.State, label string) (t *domain.Transition, created bool) {
	if existing := g.FindTransition(src, dst); existing != nil {
		return existing, false
	}
	t = &domain.Transition{Source: src, Target: dst, Label: label}
	g.transitions = append(slices.Clip(g.transitions), t)
	g.revision++
	return t, true
}

// RemoveTransition deletes t. It reports false if t is not part of the graph.
func (g *Graph) RemoveTransition(t *domain.Transition) bool {
	i := slices.Index(g.transitions, t)
	if i < 0 {
		return false
	}
	g.transitions = slices.Delete(slices.Clone(g.transitions), i, i+1)
	g.revision++
	return true
}

// HasLoop reports whether s already has a self-loop.
func (g *Graph) HasLoop(s *domain.State) bool {
	return g.FindTransition(s, s) != nil
}

// FindPseudoState returns the marker of the given role owned by owner.
func (g *Graph) FindPseudoState(owner string, role domain.Role) *domain.State {
	if role == domain.RoleOrdinary {
		return nil
	}
	for _, s := range g.states {
		if s.Role == role && s.Owner == owner {
			return s
		}
	}
	return nil
}

// ToggleMarker adds the initial or final marker of owner, placed at
// owner + offset with a blank arrow, or removes it if it already exists.
// It reports whether the marker now exists.
func (g *Graph) ToggleMarker(owner *domain.State, role domain.Role, offset domain.Point) bool {
	if owner == nil || role == domain.RoleOrdinary || owner.Role != domain.RoleOrdinary {
		return false
	}
	if m := g.FindPseudoState(owner.ID, role); m != nil {
		g.RemoveState(m)
		return false
	}

	m := &domain.State{ID: domain.MarkerID(owner.ID, role), Role: role, Owner: owner.ID}
	pos := owner.Pos().Add(offset)
	m.X, m.Y, m.Placed = pos.X, pos.Y, true
	g.insert(m)
	if role == domain.RoleInitialMarker {
		g.AddOrGetTransition(m, owner, "")
	} else {
		g.AddOrGetTransition(owner, m, "")
	}
	return true
}

// Touch replaces both collections without structural change, so observers
// comparing references see an update (used after label edits).
func (g *Graph) Touch() {
	g.states = slices.Clone(g.states)
	g.transitions = slices.Clone(g.transitions)
	g.revision++
}

// Degree counts the transitions touching s.
func (g *Graph) Degree(s *domain.State) int {
	n := 0
	for _, t := range g.transitions {
		if t.Touches(s) {
			n++
		}
	}
	return n
}
