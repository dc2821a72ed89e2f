package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/quiver/pkg/domain"
)

func dist(a, b Body) float64 {
	d := b.Pos.Sub(a.Pos)
	return math.Hypot(d.X, d.Y)
}

// noGravity isolates the pairwise forces.
func noGravity() Params {
	p := DefaultParams()
	p.Gravity = 0
	return p
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	in := []Body{
		{Pos: domain.Point{X: 100, Y: 100}, Charge: -750},
		{Pos: domain.Point{X: 200, Y: 100}, Charge: -750},
	}
	snapshot := append([]Body(nil), in...)
	_ = Step(in, nil, DefaultParams())
	assert.Equal(t, snapshot, in)
}

func TestStep_Repulsion(t *testing.T) {
	bodies := []Body{
		{Pos: domain.Point{X: 400, Y: 250}, Charge: -750},
		{Pos: domain.Point{X: 450, Y: 250}, Charge: -750},
	}
	before := dist(bodies[0], bodies[1])
	for i := 0; i < 5; i++ {
		bodies = Step(bodies, nil, noGravity())
	}
	assert.Greater(t, dist(bodies[0], bodies[1]), before)
}

func TestStep_HiddenChargeIsWeaker(t *testing.T) {
	strong := Step([]Body{
		{Pos: domain.Point{X: 0, Y: 0}, Charge: -750},
		{Pos: domain.Point{X: 50, Y: 0}, Charge: -750},
	}, nil, noGravity())
	weak := Step([]Body{
		{Pos: domain.Point{X: 0, Y: 0}, Charge: -750},
		{Pos: domain.Point{X: 50, Y: 0}, Charge: -100},
	}, nil, noGravity())
	// Body 0 is pushed by the charge of body 1.
	assert.Less(t, weak[0].Vel.X, 0.0)
	assert.Less(t, strong[0].Vel.X, weak[0].Vel.X)
}

func TestStep_SpringPullsTowardsRestLength(t *testing.T) {
	bodies := []Body{
		{Pos: domain.Point{X: 0, Y: 0}, Weight: 1},
		{Pos: domain.Point{X: 600, Y: 0}, Weight: 1},
	}
	links := []Link{{Source: 0, Target: 1, Distance: 175, Strength: 1}}
	before := dist(bodies[0], bodies[1])
	bodies = Step(bodies, links, noGravity())
	assert.Less(t, dist(bodies[0], bodies[1]), before)
	// Equal weights split the correction evenly.
	assert.InDelta(t, bodies[0].Pos.X, 600-bodies[1].Pos.X, 1e-9)
}

func TestStep_PinnedIsAnchor(t *testing.T) {
	bodies := []Body{
		{Pos: domain.Point{X: 100, Y: 100}, Charge: -750, Pinned: true, Vel: domain.Point{X: 3}},
		{Pos: domain.Point{X: 130, Y: 100}, Charge: -750},
	}
	out := Step(bodies, nil, DefaultParams())
	assert.Equal(t, bodies[0].Pos, out[0].Pos)
	assert.Equal(t, domain.Point{}, out[0].Vel)
	// The pinned body still pushes the free one.
	assert.Greater(t, out[1].Pos.X, 130.0)
}

func TestStep_Gravity(t *testing.T) {
	out := Step([]Body{{Pos: domain.Point{X: 0, Y: 0}}}, nil, DefaultParams())
	assert.Greater(t, out[0].Pos.X, 0.0)
	assert.Greater(t, out[0].Pos.Y, 0.0)
}

func TestStep_CoincidentBodiesSeparate(t *testing.T) {
	bodies := []Body{
		{Pos: domain.Point{X: 10, Y: 10}, Charge: -100},
		{Pos: domain.Point{X: 10, Y: 10}, Charge: -100},
	}
	out := Step(bodies, nil, noGravity())
	assert.False(t, math.IsNaN(out[0].Pos.X))
	assert.NotEqual(t, out[0].Pos, out[1].Pos)
}

func TestStep_IgnoresBadLinks(t *testing.T) {
	bodies := []Body{{Pos: domain.Point{X: 1, Y: 1}}}
	assert.NotPanics(t, func() {
		Step(bodies, []Link{{Source: 0, Target: 5, Distance: 75}, {Source: 0, Target: 0}}, DefaultParams())
	})
}
