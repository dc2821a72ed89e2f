package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/internal/automaton"
	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
)

func TestGenerateDaut(t *testing.T) {
	got := graph.GenerateDautWithContext(sample(), "lal(a-z), b")
	assert.Equal(t, `context = "lal(a-z), b"
$ -> 0
0 -> 1 a
1 -> 1 b, c
1 -> $
`, got)
}

func TestParseDaut(t *testing.T) {
	snap, ctx, err := graph.ParseDaut(`context = "lal(a-z), b"
$ -> 0
0 -> 1 a
// comment
1 -> 1 b, c
1 -> $
`)
	require.NoError(t, err)
	assert.Equal(t, "lal(a-z), b", ctx)
	assert.Equal(t, []domain.StateRecord{{ID: "0"}, {ID: "1"}}, snap.States)
	assert.Equal(t, 1, snap.LastStateID)
	require.Len(t, snap.Transitions, 4)
	assert.Equal(t, domain.TransitionRecord{Target: "0"}, snap.Transitions[0])
	assert.Equal(t, domain.TransitionRecord{Source: "0", Target: "1", Label: "a"}, snap.Transitions[1])

	// Loading repairs the $ ends into markers.
	g, repairs := automaton.FromSnapshot(snap)
	assert.Equal(t, 2, repairs)
	assert.NotNil(t, g.FindPseudoState("0", domain.RoleInitialMarker))
	assert.NotNil(t, g.FindPseudoState("1", domain.RoleFinalMarker))

	// And exporting the repaired graph gives the same text back.
	assert.Equal(t, graph.GenerateDaut(snap), graph.GenerateDaut(g.Snapshot()))
}

func TestParseDaut_Errors(t *testing.T) {
	_, _, err := graph.ParseDaut("0 1 a")
	assert.Error(t, err)

	_, _, err = graph.ParseDaut("$ -> $")
	assert.Error(t, err)
}
