package layout

import (
	"math/rand"

	"github.com/aretw0/quiver/internal/geometry"
	"github.com/aretw0/quiver/pkg/domain"
)

// Graph is the read side of the automaton the engine lays out.
type Graph interface {
	States() []*domain.State
	Transitions() []*domain.Transition
	Revision() uint64
}

// Engine keeps the simulation state between ticks.
// Layout writes positions only; it never changes the structure of the graph.
type Engine struct {
	params Params
	rng    *rand.Rand

	vel      map[*domain.State]domain.Point
	dragged  map[*domain.State]bool
	revision uint64
	seeded   bool
}

// New creates an engine. The seed drives the placement of states that have no position.
func New(params Params, seed int64) *Engine {
	return &Engine{
		params:  params,
		rng:     rand.New(rand.NewSource(seed)),
		vel:     make(map[*domain.State]domain.Point),
		dragged: make(map[*domain.State]bool),
	}
}

// Params returns the simulation parameters.
func (e *Engine) Params() Params { return e.params }

// Reseed reconciles the engine with g when its collections were replaced.
// Retained states keep position and velocity; new states without a position
// are placed next to a placed neighbor, or at random on the canvas.
func (e *Engine) Reseed(g Graph) {
	if e.seeded && g.Revision() == e.revision {
		return
	}
	e.seeded = true
	e.revision = g.Revision()

	live := make(map[*domain.State]bool, len(g.States()))
	for _, s := range g.States() {
		live[s] = true
	}
	for s := range e.vel {
		if !live[s] {
			delete(e.vel, s)
		}
	}
	for s := range e.dragged {
		if !live[s] {
			delete(e.dragged, s)
		}
	}

	for _, s := range g.States() {
		if s.Placed {
			continue
		}
		e.place(s, g.Transitions())
	}
}

func (e *Engine) place(s *domain.State, transitions []*domain.Transition) {
	for _, t := range transitions {
		var other *domain.State
		switch {
		case t.Source == s && t.Target != s:
			other = t.Target
		case t.Target == s && t.Source != s:
			other = t.Source
		}
		if other != nil && other.Placed {
			s.X = other.X + (e.rng.Float64()-0.5)*geometry.ShortLinkDistance
			s.Y = other.Y + (e.rng.Float64()-0.5)*geometry.ShortLinkDistance
			s.Placed = true
			return
		}
	}
	s.X = e.rng.Float64() * e.params.Width
	s.Y = e.rng.Float64() * e.params.Height
	s.Placed = true
}

// Tick runs one simulation step over g and writes the positions back.
func (e *Engine) Tick(g Graph) {
	e.Reseed(g)

	states := g.States()
	index := make(map[*domain.State]int, len(states))
	bodies := make([]Body, len(states))
	for i, s := range states {
		index[s] = i
		bodies[i] = Body{
			Pos:    s.Pos(),
			Vel:    e.vel[s],
			Charge: geometry.Charge(s),
			Pinned: s.Fixed || e.dragged[s],
		}
	}

	links := make([]Link, 0, len(g.Transitions()))
	for _, t := range g.Transitions() {
		si, ok1 := index[t.Source]
		ti, ok2 := index[t.Target]
		if !ok1 || !ok2 {
			continue
		}
		bodies[si].Weight++
		bodies[ti].Weight++
		links = append(links, Link{Source: si, Target: ti, Distance: geometry.LinkDistance(t), Strength: 1})
	}

	next := Step(bodies, links, e.params)
	for i, s := range states {
		s.X, s.Y = next[i].Pos.X, next[i].Pos.Y
		e.vel[s] = next[i].Vel
	}
}

// Velocity reports the current velocity of s.
func (e *Engine) Velocity(s *domain.State) domain.Point { return e.vel[s] }

// DragStart anchors s until DragEnd.
func (e *Engine) DragStart(s *domain.State) {
	if s == nil {
		return
	}
	e.dragged[s] = true
	e.vel[s] = domain.Point{}
}

// DragMove moves an anchored state to p.
func (e *Engine) DragMove(s *domain.State, p domain.Point) {
	if s == nil || !e.dragged[s] {
		return
	}
	s.X, s.Y, s.Placed = p.X, p.Y, true
}

// DragEnd releases the anchor. A Fixed state stays put.
func (e *Engine) DragEnd(s *domain.State) {
	delete(e.dragged, s)
}

// Dragging reports whether s is anchored by a drag.
func (e *Engine) Dragging(s *domain.State) bool { return e.dragged[s] }
