// Package interaction turns pointer and keyboard events into graph edits.
//
// A Controller is one editing session. It owns the selection and gesture
// state, is the only writer of the graph structure, and mirrors every change
// to the host document through a Bridge.
package interaction

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/quiver/internal/automaton"
	"github.com/aretw0/quiver/internal/layout"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// Labels are the defaults given to transitions created by gestures.
type Labels struct {
	Transition string `json:"transition" yaml:"transition" koanf:"transition"`
	Loop       string `json:"loop" yaml:"loop" koanf:"loop"`
	Marker     string `json:"marker" yaml:"marker" koanf:"marker"`
}

// DefaultLabels returns the stock labels.
func DefaultLabels() Labels {
	return Labels{Transition: "b", Loop: "a", Marker: ""}
}

// MarkerOffset is the horizontal distance between a state and its markers.
const MarkerOffset = 75.0

// Controller is the interaction state machine of one editing session.
// It is not safe for concurrent use: hosts deliver events and ticks one at a time.
type Controller struct {
	graph  *automaton.Graph
	layout *layout.Engine
	bridge *Bridge
	logger *slog.Logger
	hooks  domain.MutationHooks
	keymap domain.Keymap
	labels Labels

	// Selection: at most one of the two is set.
	selectedState      *domain.State
	selectedTransition *domain.Transition

	// Gesture.
	mousedownState *domain.State
	mouseoverState *domain.State
	dragLine       *DragLine
	panDragging    bool
	panHeld        bool
	pointer        domain.Point

	editingLabel bool
	labelText    string

	lastKeyDown domain.Key
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.MutationHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithKeymap replaces the key bindings.
func WithKeymap(km domain.Keymap) Option {
	return func(c *Controller) {
		c.keymap = km
	}
}

// WithLabels sets the default labels of created transitions.
func WithLabels(labels Labels) Option {
	return func(c *Controller) {
		c.labels = labels
	}
}

// WithLayout replaces the layout engine.
func WithLayout(engine *layout.Engine) Option {
	return func(c *Controller) {
		c.layout = engine
	}
}

// New loads the graph held by doc, repairs it, primes the document and
// returns a controller ready to receive events.
func New(ctx context.Context, doc ports.Document, opts ...Option) (*Controller, error) {
	c := &Controller{
		logger: logging.NewNop(),
		keymap: domain.DefaultKeymap(),
		labels: DefaultLabels(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.layout == nil {
		c.layout = layout.New(layout.DefaultParams(), 1)
	}
	c.bridge = NewBridge(doc, c.logger)

	snap, err := c.bridge.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load graph from document: %w", err)
	}
	graph, repairs := automaton.FromSnapshot(snap)
	c.graph = graph
	c.layout.Reseed(graph)

	if repairs > 0 {
		c.logger.Info("repaired loaded graph", "repairs", repairs)
		c.bridge.Push(ctx, graph.Snapshot())
	}
	c.bridge.Prime(ctx, graph.Snapshot())
	return c, nil
}

// Graph exposes the graph for read-only consumers (renderers, exporters).
func (c *Controller) Graph() *automaton.Graph { return c.graph }

// Layout exposes the layout engine.
func (c *Controller) Layout() *layout.Engine { return c.layout }

// Dispatch applies one event and returns the mutations it caused.
// Events that do not apply degrade to no-ops and return an empty slice.
func (c *Controller) Dispatch(ctx context.Context, ev domain.Event) []domain.Mutation {
	var muts []domain.Mutation
	switch e := ev.(type) {
	case domain.PointerDown:
		muts = c.pointerDown(e)
	case domain.PointerMove:
		c.pointerMove(e)
	case domain.PointerOver:
		c.mouseoverState = c.graph.Lookup(e.StateID)
	case domain.PointerUp:
		muts = c.pointerUp(e)
	case domain.KeyDown:
		muts = c.keyDown(e.Key)
	case domain.KeyUp:
		c.keyUp(e.Key)
	case domain.LabelFocus:
		c.labelFocus()
	case domain.LabelInput:
		if c.editingLabel {
			c.labelText = e.Text
		}
	case domain.LabelCommit:
		return c.labelCommit(ctx, e.Text)
	case domain.LabelBlur:
		return c.labelCommit(ctx, e.Text)
	default:
		c.logger.Debug("ignoring unsupported event", "type", fmt.Sprintf("%T", ev))
	}

	if len(muts) > 0 {
		c.commit(ctx, muts)
	}
	if muts == nil {
		muts = []domain.Mutation{}
	}
	return muts
}

// Perform runs a shortcut action as if its key had been pressed,
// ignoring the key edge. Actions are suppressed while a label is edited.
func (c *Controller) Perform(ctx context.Context, action domain.Action) []domain.Mutation {
	muts := c.perform(action)
	if len(muts) > 0 {
		c.commit(ctx, muts)
	}
	if muts == nil {
		muts = []domain.Mutation{}
	}
	return muts
}

// Tick advances the layout by one step.
func (c *Controller) Tick() {
	c.layout.Tick(c.graph)
}

// Select makes the state with the given id the selection.
func (c *Controller) Select(id string) error {
	s := c.graph.Lookup(id)
	if s == nil {
		return fmt.Errorf("%w: %q", domain.ErrUnknownState, id)
	}
	c.selectedState = s
	c.selectedTransition = nil
	return nil
}

// SelectTransition makes the transition source -> target the selection.
func (c *Controller) SelectTransition(source, target string) error {
	t := c.lookupTransition(source, target)
	if t == nil {
		return fmt.Errorf("%w: transition %q -> %q", domain.ErrUnknownState, source, target)
	}
	c.selectedTransition = t
	c.selectedState = nil
	return nil
}

// ClearSelection drops any selection.
func (c *Controller) ClearSelection() {
	c.selectedState = nil
	c.selectedTransition = nil
}

// SelectedState returns the selected state, if any.
func (c *Controller) SelectedState() *domain.State { return c.selectedState }

// SelectedTransition returns the selected transition, if any.
func (c *Controller) SelectedTransition() *domain.Transition { return c.selectedTransition }

// EditingLabel reports whether the label editor has focus.
func (c *Controller) EditingLabel() bool { return c.editingLabel }

func (c *Controller) lookupTransition(source, target string) *domain.Transition {
	src, dst := c.graph.Lookup(source), c.graph.Lookup(target)
	if src == nil || dst == nil {
		return nil
	}
	return c.graph.FindTransition(src, dst)
}

// commit mirrors the graph to the host and lets the layout pick up new nodes.
func (c *Controller) commit(ctx context.Context, muts []domain.Mutation) {
	c.reconcile()
	c.layout.Reseed(c.graph)

	snap := c.graph.Snapshot()
	c.bridge.Push(ctx, snap)

	for _, m := range muts {
		c.logger.Debug("graph mutated",
			"kind", m.Kind, "state_id", m.StateID, "source", m.Source, "target", m.Target)
		if c.hooks.OnMutation != nil {
			c.hooks.OnMutation(ctx, m)
		}
	}
	if c.hooks.OnFlush != nil {
		c.hooks.OnFlush(ctx, snap)
	}
}

// reconcile drops references to anything no longer in the graph.
func (c *Controller) reconcile() {
	states := c.graph.States()
	if c.selectedState != nil && !slices.Contains(states, c.selectedState) {
		c.selectedState = nil
	}
	if c.mousedownState != nil && !slices.Contains(states, c.mousedownState) {
		c.mousedownState = nil
		c.dragLine = nil
	}
	if c.mouseoverState != nil && !slices.Contains(states, c.mouseoverState) {
		c.mouseoverState = nil
	}
	if c.selectedTransition != nil && !slices.Contains(c.graph.Transitions(), c.selectedTransition) {
		c.selectedTransition = nil
	}
}

// removal reports what disappeared between two versions of the collections.
func removal(beforeStates []*domain.State, beforeTransitions []*domain.Transition, g *automaton.Graph) []domain.Mutation {
	var muts []domain.Mutation
	for _, t := range beforeTransitions {
		if !slices.Contains(g.Transitions(), t) {
			muts = append(muts, transitionMutation(domain.MutationTransitionRemoved, t))
		}
	}
	for _, s := range beforeStates {
		if !slices.Contains(g.States(), s) {
			muts = append(muts, domain.Mutation{Kind: domain.MutationStateRemoved, StateID: s.ID})
		}
	}
	return muts
}

func transitionMutation(kind domain.MutationKind, t *domain.Transition) domain.Mutation {
	return domain.Mutation{Kind: kind, Source: t.Source.ID, Target: t.Target.ID, Label: t.Label}
}
