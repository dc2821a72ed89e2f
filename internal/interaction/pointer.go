package interaction

import (
	"math"

	"github.com/aretw0/quiver/internal/geometry"
	"github.com/aretw0/quiver/pkg/domain"
)

// DragLine is the rubber band drawn while dragging a new transition.
type DragLine struct {
	From domain.Point `json:"from"`
	To   domain.Point `json:"to"`
}

func (c *Controller) panning(modifier bool) bool {
	return modifier || c.panHeld
}

func (c *Controller) pointerDown(e domain.PointerDown) []domain.Mutation {
	c.pointer = e.Pos

	switch {
	case e.Target.IsState():
		c.stateDown(e)
		return nil
	case e.Target.IsTransition():
		c.transitionDown(e)
		return nil
	}

	// Empty canvas.
	if c.panning(e.Modifier) || c.mousedownState != nil {
		return nil
	}
	s := c.graph.AddState(e.Pos)
	return []domain.Mutation{{Kind: domain.MutationStateAdded, StateID: s.ID}}
}

func (c *Controller) stateDown(e domain.PointerDown) {
	s := c.graph.Lookup(e.Target.StateID)
	if s == nil {
		c.logger.Debug("pointer down on unknown state", "state_id", e.Target.StateID)
		return
	}

	if c.selectedState == s {
		c.selectedState = nil
	} else {
		c.selectedState = s
	}
	c.selectedTransition = nil

	if c.panning(e.Modifier) {
		c.mousedownState = s
		c.panDragging = true
		c.layout.DragStart(s)
		return
	}
	if domain.IsHidden(s) {
		return
	}
	c.mousedownState = s
	c.dragLine = &DragLine{From: s.Pos(), To: s.Pos()}
}

func (c *Controller) transitionDown(e domain.PointerDown) {
	t := c.lookupTransition(e.Target.Source, e.Target.Dest)
	if t == nil {
		c.logger.Debug("pointer down on unknown transition", "source", e.Target.Source, "target", e.Target.Dest)
		return
	}
	if c.selectedTransition == t {
		c.selectedTransition = nil
	} else {
		c.selectedTransition = t
	}
	c.selectedState = nil
}

func (c *Controller) pointerMove(e domain.PointerMove) {
	c.pointer = e.Pos
	if s := c.mouseoverState; s != nil && math.Hypot(e.Pos.X-s.X, e.Pos.Y-s.Y) > geometry.StateRadius {
		c.mouseoverState = nil
	}
	if c.mousedownState == nil {
		return
	}
	if c.panDragging {
		c.layout.DragMove(c.mousedownState, e.Pos)
		return
	}
	if c.dragLine != nil {
		c.dragLine.From = c.mousedownState.Pos()
		c.dragLine.To = e.Pos
	}
}

func (c *Controller) pointerUp(e domain.PointerUp) []domain.Mutation {
	c.pointer = e.Pos
	defer c.resetGesture()

	if c.mousedownState == nil || c.panDragging {
		return nil
	}

	over := c.mouseoverState
	if e.OverStateID != "" {
		over = c.graph.Lookup(e.OverStateID)
	}
	if over == nil || over == c.mousedownState {
		return nil
	}

	src := c.mousedownState
	if domain.IsHidden(src) || domain.IsHidden(over) {
		c.selectedTransition = c.graph.FindTransition(src, over)
		c.selectedState = nil
		return nil
	}

	t, created := c.graph.AddOrGetTransition(src, over, c.labels.Transition)
	c.selectedTransition = t
	c.selectedState = nil
	if !created {
		return nil
	}
	return []domain.Mutation{transitionMutation(domain.MutationTransitionAdded, t)}
}

func (c *Controller) resetGesture() {
	if c.panDragging && c.mousedownState != nil {
		c.layout.DragEnd(c.mousedownState)
	}
	c.mousedownState = nil
	c.mouseoverState = nil
	c.dragLine = nil
	c.panDragging = false
}
