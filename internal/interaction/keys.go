package interaction

import (
	"github.com/aretw0/quiver/pkg/domain"
)

func (c *Controller) keyDown(k domain.Key) []domain.Mutation {
	if c.editingLabel || c.lastKeyDown != "" {
		return nil
	}
	c.lastKeyDown = k
	return c.perform(c.keymap.Lookup(k))
}

func (c *Controller) keyUp(k domain.Key) {
	c.lastKeyDown = ""
	if c.keymap.Lookup(k) == domain.ActionPan {
		c.panHeld = false
	}
}

func (c *Controller) perform(action domain.Action) []domain.Mutation {
	if c.editingLabel {
		return nil
	}

	switch action {
	case domain.ActionPan:
		c.panHeld = true
		return nil
	case domain.ActionDelete:
		return c.deleteSelected()
	case domain.ActionPin:
		return c.pinSelected()
	case domain.ActionFinal:
		return c.toggleMarker(domain.RoleFinalMarker, domain.Point{X: MarkerOffset})
	case domain.ActionInitial:
		return c.toggleMarker(domain.RoleInitialMarker, domain.Point{X: -MarkerOffset})
	case domain.ActionLoop:
		return c.addLoop()
	}
	return nil
}

func (c *Controller) deleteSelected() []domain.Mutation {
	states, transitions := c.graph.States(), c.graph.Transitions()
	switch {
	case c.selectedState != nil:
		c.graph.RemoveState(c.selectedState)
	case c.selectedTransition != nil:
		c.graph.RemoveTransition(c.selectedTransition)
	}
	c.ClearSelection()
	return removal(states, transitions, c.graph)
}

func (c *Controller) pinSelected() []domain.Mutation {
	s := c.selectedState
	if s == nil || s.Fixed {
		return nil
	}
	s.Fixed = true
	return []domain.Mutation{{Kind: domain.MutationStatePinned, StateID: s.ID}}
}

func (c *Controller) toggleMarker(role domain.Role, offset domain.Point) []domain.Mutation {
	owner := c.selectedState
	if owner == nil || domain.IsHidden(owner) {
		return nil
	}

	states, transitions := c.graph.States(), c.graph.Transitions()
	if !c.graph.ToggleMarker(owner, role, offset) {
		return removal(states, transitions, c.graph)
	}

	m := c.graph.FindPseudoState(owner.ID, role)
	muts := []domain.Mutation{{Kind: domain.MutationStateAdded, StateID: m.ID}}
	arrow := c.graph.FindTransition(m, owner)
	if role == domain.RoleFinalMarker {
		arrow = c.graph.FindTransition(owner, m)
	}
	if arrow != nil {
		arrow.Label = c.labels.Marker
		muts = append(muts, transitionMutation(domain.MutationTransitionAdded, arrow))
	}
	return muts
}

func (c *Controller) addLoop() []domain.Mutation {
	s := c.selectedState
	if s == nil || domain.IsHidden(s) || c.graph.HasLoop(s) {
		return nil
	}
	t, _ := c.graph.AddOrGetTransition(s, s, c.labels.Loop)
	return []domain.Mutation{transitionMutation(domain.MutationTransitionAdded, t)}
}
