package quiver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/quiver/internal/interaction"
	"github.com/aretw0/quiver/internal/layout"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/ports"
)

// Frame is the render model returned by Editor.Frame.
type Frame = interaction.Frame

// Labels are the default labels of created transitions.
type Labels = interaction.Labels

// LayoutParams tunes the force simulation.
type LayoutParams = layout.Params

// DefaultLabels returns the stock labels.
func DefaultLabels() Labels { return interaction.DefaultLabels() }

// DefaultLayoutParams returns the stock simulation parameters.
func DefaultLayoutParams() LayoutParams { return layout.DefaultParams() }

// Editor is the high-level entry point of the library.
// It wraps one interaction session and serializes access to it.
type Editor struct {
	mu         sync.Mutex
	controller *interaction.Controller

	sessionID  string
	logger     *slog.Logger
	hooks      domain.MutationHooks
	keymap     domain.Keymap
	labels     Labels
	params     LayoutParams
	seed       int64
	store      ports.GraphStore
	publisher  ports.DiffPublisher
	onDiff     []func(*domain.GraphDiff)
	lastSynced *domain.Snapshot
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithMutationHooks registers observability hooks.
func WithMutationHooks(hooks domain.MutationHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithKeymap replaces the default key bindings.
func WithKeymap(km domain.Keymap) Option {
	return func(e *Editor) {
		e.keymap = km
	}
}

// WithLabels sets the labels given to transitions created by gestures.
func WithLabels(labels Labels) Option {
	return func(e *Editor) {
		e.labels = labels
	}
}

// WithLayout sets the simulation parameters and the placement seed.
func WithLayout(params LayoutParams, seed int64) Option {
	return func(e *Editor) {
		e.params = params
		e.seed = seed
	}
}

// WithSessionID names the session for persistence and diffs.
func WithSessionID(id string) Option {
	return func(e *Editor) {
		e.sessionID = id
	}
}

// WithStore persists a snapshot of the session after every flush.
func WithStore(store ports.GraphStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithPublisher publishes the structural diff of every flush.
func WithPublisher(pub ports.DiffPublisher) Option {
	return func(e *Editor) {
		e.publisher = pub
	}
}

// WithDiffListener registers a callback for the structural diff of every flush.
func WithDiffListener(fn func(*domain.GraphDiff)) Option {
	return func(e *Editor) {
		e.onDiff = append(e.onDiff, fn)
	}
}

// New creates an editor over the host document doc.
// The graph already held by doc is loaded and repaired.
func New(ctx context.Context, doc ports.Document, opts ...Option) (*Editor, error) {
	e := &Editor{
		keymap: domain.DefaultKeymap(),
		labels: interaction.DefaultLabels(),
		params: layout.DefaultParams(),
		seed:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.sessionID != "" {
		e.logger = e.logger.With("session_id", e.sessionID)
	}

	ctrl, err := interaction.New(ctx, doc,
		interaction.WithLogger(e.logger),
		interaction.WithKeymap(e.keymap),
		interaction.WithLabels(e.labels),
		interaction.WithLayout(layout.New(e.params, e.seed)),
		interaction.WithHooks(domain.MutationHooks{
			OnMutation: e.hooks.OnMutation,
			OnFlush:    e.afterFlush,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start editor: %w", err)
	}
	e.controller = ctrl
	e.lastSynced = ctrl.Graph().Snapshot()
	return e, nil
}

// SessionID returns the session name given with WithSessionID.
func (e *Editor) SessionID() string { return e.sessionID }

func (e *Editor) afterFlush(ctx context.Context, snap *domain.Snapshot) {
	diff := domain.Diff(e.sessionID, e.lastSynced, snap)
	e.lastSynced = snap

	if e.store != nil && e.sessionID != "" {
		if err := e.store.Save(ctx, e.sessionID, snap); err != nil {
			e.logger.Error("failed to persist session", "error", err)
		}
	}
	if diff != nil {
		if e.publisher != nil {
			if err := e.publisher.Publish(ctx, diff); err != nil {
				e.logger.Warn("failed to publish diff", "error", err)
			}
		}
		for _, fn := range e.onDiff {
			fn(diff)
		}
	}
	if e.hooks.OnFlush != nil {
		e.hooks.OnFlush(ctx, snap)
	}
}

// Dispatch applies one input event and returns the mutations it caused.
func (e *Editor) Dispatch(ctx context.Context, ev domain.Event) []domain.Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Dispatch(ctx, ev)
}

// DispatchRaw decodes a generic event object (from JSON, YAML or an agent call) and applies it.
func (e *Editor) DispatchRaw(ctx context.Context, raw map[string]any) ([]domain.Mutation, error) {
	ev, err := domain.DecodeEvent(raw)
	if err != nil {
		return nil, err
	}
	return e.Dispatch(ctx, ev), nil
}

// Perform runs a shortcut action on the current selection.
func (e *Editor) Perform(ctx context.Context, action domain.Action) []domain.Mutation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Perform(ctx, action)
}

// Select selects the state with the given id.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Select(id)
}

// SelectTransition selects the transition source -> target.
func (e *Editor) SelectTransition(source, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.SelectTransition(source, target)
}

// ClearSelection drops any selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controller.ClearSelection()
}

// Tick advances the layout by one step.
func (e *Editor) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controller.Tick()
}

// Frame returns what to paint now.
func (e *Editor) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Frame()
}

// Snapshot returns the graph in its wire form.
func (e *Editor) Snapshot() *domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.controller.Graph().Snapshot()
}

// Export renders the graph in one of the supported text formats
// ("mermaid" or "daut").
func (e *Editor) Export(format string) (string, error) {
	snap := e.Snapshot()
	switch format {
	case "", graph.FormatMermaid:
		return graph.GenerateMermaid(snap), nil
	case graph.FormatDaut:
		return graph.GenerateDaut(snap), nil
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}
