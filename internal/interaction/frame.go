package interaction

import (
	"github.com/aretw0/quiver/internal/geometry"
	"github.com/aretw0/quiver/pkg/domain"
)

// StateView is a state as the rendering surface paints it.
type StateView struct {
	ID       string  `json:"id"`
	Role     string  `json:"role"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Hidden   bool    `json:"hidden"`
	Fixed    bool    `json:"fixed,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// TransitionView is a transition with its computed curve.
type TransitionView struct {
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Label    string         `json:"label"`
	Selected bool           `json:"selected,omitempty"`
	Curve    geometry.Curve `json:"curve"`
	Path     string         `json:"path"`
}

// LabelView is the state of the label editor.
type LabelView struct {
	Editing bool   `json:"editing"`
	Text    string `json:"text"`
}

// Frame is everything needed to paint the editor once.
type Frame struct {
	Width       float64          `json:"width"`
	Height      float64          `json:"height"`
	Revision    uint64           `json:"revision"`
	States      []StateView      `json:"states"`
	Transitions []TransitionView `json:"transitions"`
	DragLine    *DragLine        `json:"drag_line,omitempty"`
	Label       LabelView        `json:"label"`
	Pan         bool             `json:"pan"`
}

// Frame computes the render model of the current graph.
func (c *Controller) Frame() Frame {
	params := c.layout.Params()
	f := Frame{
		Width:       params.Width,
		Height:      params.Height,
		Revision:    c.graph.Revision(),
		States:      make([]StateView, 0, len(c.graph.States())),
		Transitions: make([]TransitionView, 0, len(c.graph.Transitions())),
		Label:       LabelView{Editing: c.editingLabel, Text: c.labelText},
		Pan:         c.panHeld,
	}

	for _, s := range c.graph.States() {
		f.States = append(f.States, StateView{
			ID:       s.ID,
			Role:     s.Role.String(),
			X:        s.X,
			Y:        s.Y,
			Hidden:   domain.IsHidden(s),
			Fixed:    s.Fixed,
			Selected: s == c.selectedState,
		})
	}

	all := c.graph.Transitions()
	for _, t := range all {
		curve := geometry.Compute(t, all)
		f.Transitions = append(f.Transitions, TransitionView{
			Source:   t.Source.ID,
			Target:   t.Target.ID,
			Label:    t.Label,
			Selected: t == c.selectedTransition,
			Curve:    curve,
			Path:     curve.SVGPath(),
		})
	}

	if c.dragLine != nil {
		line := *c.dragLine
		f.DragLine = &line
	}
	return f
}
