package quiver_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/dsl"
)

func click(ctx context.Context, e *quiver.Editor, x, y float64) []domain.Mutation {
	pos := domain.Point{X: x, Y: y}
	muts := e.Dispatch(ctx, domain.PointerDown{Pos: pos})
	return append(muts, e.Dispatch(ctx, domain.PointerUp{Pos: pos})...)
}

func TestEditor_PersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	var (
		diffs    []*domain.GraphDiff
		observed []domain.MutationKind
	)

	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(nil),
		quiver.WithSessionID("s1"),
		quiver.WithStore(store),
		quiver.WithDiffListener(func(d *domain.GraphDiff) { diffs = append(diffs, d) }),
		quiver.WithMutationHooks(domain.MutationHooks{
			OnMutation: func(_ context.Context, m domain.Mutation) { observed = append(observed, m.Kind) },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, "s1", editor.SessionID())

	muts := click(ctx, editor, 100, 100)
	require.Len(t, muts, 1)
	assert.Equal(t, domain.MutationStateAdded, muts[0].Kind)
	assert.Equal(t, "0", muts[0].StateID)
	assert.Equal(t, []domain.MutationKind{domain.MutationStateAdded}, observed)

	saved, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, saved.States, 1)
	assert.Equal(t, 0, saved.LastStateID)

	require.Len(t, diffs, 1)
	assert.Equal(t, "s1", diffs[0].SessionID)
	require.Len(t, diffs[0].AddedStates, 1)
	assert.Equal(t, domain.ID("0"), diffs[0].AddedStates[0].ID)
}

func TestEditor_DispatchRaw(t *testing.T) {
	ctx := context.Background()
	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(nil))
	require.NoError(t, err)

	muts, err := editor.DispatchRaw(ctx, map[string]any{"type": "pointer_down", "x": 10, "y": 20})
	require.NoError(t, err)
	require.Len(t, muts, 1)

	_, err = editor.DispatchRaw(ctx, map[string]any{"type": "wiggle"})
	require.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestEditor_ActionsOnSelection(t *testing.T) {
	ctx := context.Background()
	b := dsl.New()
	b.State(0).At(100, 100).Go(1, "a")
	b.State(1).At(300, 100)

	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(b.MustBuild()))
	require.NoError(t, err)

	require.NoError(t, editor.Select("1"))
	muts := editor.Perform(ctx, domain.ActionLoop)
	require.Len(t, muts, 1)
	assert.Equal(t, domain.MutationTransitionAdded, muts[0].Kind)
	assert.Equal(t, "1", muts[0].Source)
	assert.Equal(t, "1", muts[0].Target)
	editor.ClearSelection()

	require.NoError(t, editor.SelectTransition("0", "1"))
	muts = editor.Perform(ctx, domain.ActionDelete)
	require.Len(t, muts, 1)
	assert.Equal(t, domain.MutationTransitionRemoved, muts[0].Kind)

	require.Error(t, editor.Select("42"))
	assert.Len(t, editor.Snapshot().Transitions, 1)
}

func TestEditor_Export(t *testing.T) {
	ctx := context.Background()
	b := dsl.New()
	b.State(0).Initial().Go(1, "a")
	b.State(1).Final()

	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(b.MustBuild()))
	require.NoError(t, err)

	mermaid, err := editor.Export("")
	require.NoError(t, err)
	assert.Contains(t, mermaid, "stateDiagram-v2")

	daut, err := editor.Export("daut")
	require.NoError(t, err)
	assert.NotEmpty(t, daut)

	_, err = editor.Export("dot")
	require.Error(t, err)
}

func TestEditor_TickAdvancesFrame(t *testing.T) {
	ctx := context.Background()
	editor, err := quiver.New(ctx, memory.NewSnapshotDocument(nil),
		quiver.WithLayout(quiver.DefaultLayoutParams(), 7),
	)
	require.NoError(t, err)
	click(ctx, editor, 100, 100)
	click(ctx, editor, 110, 100)

	gap := func(f quiver.Frame) float64 {
		require.Len(t, f.States, 2)
		return math.Hypot(f.States[1].X-f.States[0].X, f.States[1].Y-f.States[0].Y)
	}

	before := gap(editor.Frame())
	for range 10 {
		editor.Tick()
	}
	assert.Greater(t, gap(editor.Frame()), before)
}
