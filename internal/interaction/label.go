package interaction

import (
	"context"

	"github.com/aretw0/quiver/pkg/domain"
)

func (c *Controller) labelFocus() {
	if c.editingLabel {
		return
	}
	c.editingLabel = true
	c.labelText = ""
	if c.selectedTransition != nil {
		c.labelText = c.selectedTransition.Label
	}
}

// labelCommit writes the editor text back, or text when the event carries one.
// Losing focus commits too: there is no way to cancel an edit.
func (c *Controller) labelCommit(ctx context.Context, text *string) []domain.Mutation {
	if !c.editingLabel {
		return []domain.Mutation{}
	}
	if text != nil {
		c.labelText = *text
	}
	label := c.labelText
	c.editingLabel = false
	c.labelText = ""

	t := c.selectedTransition
	if t == nil {
		return []domain.Mutation{}
	}
	t.Label = label
	c.selectedTransition = nil

	// Same structure, new collections: the host must see the label change.
	c.graph.Touch()
	muts := []domain.Mutation{transitionMutation(domain.MutationLabelChanged, t)}
	c.commit(ctx, muts)
	return muts
}
