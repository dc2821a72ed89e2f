package automaton

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/domain"
)

func ids(states []*domain.State) []string {
	out := make([]string, 0, len(states))
	for _, s := range states {
		out = append(out, s.ID)
	}
	return out
}

func twoStates(t *testing.T) (*Graph, *domain.State, *domain.State) {
	t.Helper()
	g := New()
	a := g.AddState(domain.Point{X: 100, Y: 100})
	b := g.AddState(domain.Point{X: 300, Y: 100})
	require.Equal(t, "0", a.ID)
	require.Equal(t, "1", b.ID)
	return g, a, b
}

func TestAddOrGetTransition_Idempotent(t *testing.T) {
	g, a, b := twoStates(t)

	t1, created := g.AddOrGetTransition(a, b, "b")
	require.True(t, created)
	t2, created := g.AddOrGetTransition(a, b, "other")
	assert.False(t, created)
	assert.Same(t, t1, t2)
	assert.Equal(t, "b", t2.Label)
	assert.Len(t, g.Transitions(), 1)

	// The reverse direction is a different pair.
	t3, created := g.AddOrGetTransition(b, a, "b")
	assert.True(t, created)
	assert.NotSame(t, t1, t3)
}

func TestNextFreeID_NeverReused(t *testing.T) {
	g := New()
	assert.Equal(t, domain.NoStateID, g.LastStateID())
	assert.Equal(t, 0, g.NextFreeID())

	var last *domain.State
	for i := 0; i < 3; i++ {
		last = g.AddState(domain.Point{})
	}
	assert.Equal(t, "2", last.ID)
	assert.Equal(t, 3, g.NextFreeID())

	require.True(t, g.RemoveState(last))
	assert.Equal(t, 1, g.LastStateID())
	assert.Equal(t, 3, g.NextFreeID(), "deleted maximum must not be reused")

	// Hidden states never count.
	a := g.Lookup("0")
	g.ToggleMarker(a, domain.RoleFinalMarker, domain.Point{X: 75})
	assert.Equal(t, 3, g.NextFreeID())
	assert.Equal(t, "3", g.AddState(domain.Point{}).ID)
}

func TestRemoveState_Cascade(t *testing.T) {
	g, a, b := twoStates(t)
	c := g.AddState(domain.Point{})
	g.AddOrGetTransition(a, b, "x")
	g.AddOrGetTransition(b, a, "y")
	g.AddOrGetTransition(b, b, "a")
	g.AddOrGetTransition(a, c, "z")
	require.True(t, g.ToggleMarker(b, domain.RoleInitialMarker, domain.Point{X: -75}))
	require.True(t, g.ToggleMarker(b, domain.RoleFinalMarker, domain.Point{X: 75}))
	require.Len(t, g.States(), 5)

	require.True(t, g.RemoveState(b))

	assert.ElementsMatch(t, []string{"0", "2"}, ids(g.States()))
	require.Len(t, g.Transitions(), 1)
	assert.Same(t, a, g.Transitions()[0].Source)
	assert.Same(t, c, g.Transitions()[0].Target)
	for _, tr := range g.Transitions() {
		assert.Contains(t, g.States(), tr.Source)
		assert.Contains(t, g.States(), tr.Target)
	}

	assert.False(t, g.RemoveState(b), "second removal is a no-op")
}

func TestToggleMarker_RoundTrip(t *testing.T) {
	g := New()
	g.AddState(domain.Point{})
	owner := g.AddState(domain.Point{X: 200, Y: 50})

	for _, tc := range []struct {
		role   domain.Role
		offset domain.Point
		id     string
	}{
		{domain.RoleInitialMarker, domain.Point{X: -75}, "1.1"},
		{domain.RoleFinalMarker, domain.Point{X: 75}, "1.2"},
	} {
		t.Run(tc.role.String(), func(t *testing.T) {
			states, transitions := len(g.States()), len(g.Transitions())

			assert.True(t, g.ToggleMarker(owner, tc.role, tc.offset))
			m := g.FindPseudoState(owner.ID, tc.role)
			require.NotNil(t, m)
			assert.Equal(t, tc.id, m.ID)
			assert.Equal(t, owner.X+tc.offset.X, m.X)
			assert.True(t, g.Classify(m) == domain.Hidden)
			require.Len(t, g.Transitions(), transitions+1)
			arrow := g.Transitions()[transitions]
			assert.Empty(t, arrow.Label)
			if tc.role == domain.RoleInitialMarker {
				assert.Same(t, m, arrow.Source)
				assert.Same(t, owner, arrow.Target)
			} else {
				assert.Same(t, owner, arrow.Source)
				assert.Same(t, m, arrow.Target)
			}

			assert.False(t, g.ToggleMarker(owner, tc.role, tc.offset))
			assert.Len(t, g.States(), states)
			assert.Len(t, g.Transitions(), transitions)
		})
	}
}

func TestToggleMarker_RejectsMarkers(t *testing.T) {
	g := New()
	a := g.AddState(domain.Point{})
	g.ToggleMarker(a, domain.RoleFinalMarker, domain.Point{X: 75})
	m := g.FindPseudoState(a.ID, domain.RoleFinalMarker)
	assert.False(t, g.ToggleMarker(m, domain.RoleFinalMarker, domain.Point{X: 75}))
	assert.False(t, g.ToggleMarker(nil, domain.RoleFinalMarker, domain.Point{}))
}

func TestMutations_ReplaceCollections(t *testing.T) {
	g, a, b := twoStates(t)
	states := g.States()
	transitions := g.Transitions()
	rev := g.Revision()

	tr, _ := g.AddOrGetTransition(a, b, "b")
	assert.Len(t, transitions, 0, "previous slice must not observe the append")
	assert.Greater(t, g.Revision(), rev)

	transitions = g.Transitions()
	rev = g.Revision()
	g.RemoveTransition(tr)
	assert.Len(t, transitions, 1)
	assert.Greater(t, g.Revision(), rev)

	rev = g.Revision()
	g.Touch()
	assert.Greater(t, g.Revision(), rev)
	assert.Equal(t, ids(states), ids(g.States()))

	g.RemoveState(a)
	assert.Len(t, states, 2)
}

func TestRemoveTransition_Unknown(t *testing.T) {
	g, a, b := twoStates(t)
	assert.False(t, g.RemoveTransition(&domain.Transition{Source: a, Target: b}))
}

func TestDegreeAndLoop(t *testing.T) {
	g, a, b := twoStates(t)
	assert.False(t, g.HasLoop(a))
	g.AddOrGetTransition(a, a, "a")
	g.AddOrGetTransition(a, b, "b")
	assert.True(t, g.HasLoop(a))
	assert.Equal(t, 2, g.Degree(a))
	assert.Equal(t, 1, g.Degree(b))
}
