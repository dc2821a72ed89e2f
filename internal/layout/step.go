// Package layout runs the force-directed simulation that positions states.
//
// Step is a pure function over value types; Engine wraps it with the state
// kept between ticks (velocities, drag anchors) and reseeds when the graph
// changes.
package layout

import (
	"math"

	"github.com/aretw0/quiver/pkg/domain"
)

// Params tunes the simulation.
type Params struct {
	Width, Height float64
	// Alpha scales every force. It stays constant: the simulation never settles on its own.
	Alpha    float64
	Friction float64
	Gravity  float64
}

// DefaultParams matches the stock 960x500 editor canvas.
func DefaultParams() Params {
	return Params{
		Width:    960,
		Height:   500,
		Alpha:    0.1,
		Friction: 0.9,
		Gravity:  0.1,
	}
}

// Center is the point gravity pulls towards.
func (p Params) Center() domain.Point {
	return domain.Point{X: p.Width / 2, Y: p.Height / 2}
}

// Body is one simulated node.
type Body struct {
	Pos    domain.Point
	Vel    domain.Point
	Charge float64
	// Weight is the degree of the node; it splits spring corrections between endpoints.
	Weight int
	// Pinned bodies exert forces but never move.
	Pinned bool
}

// Link is a spring between two bodies, by index.
type Link struct {
	Source, Target int
	Distance       float64
	Strength       float64
}

// coincident is the separation assumed between bodies sharing a position.
const coincident = 0.01

// Step advances the simulation by one tick and returns the new bodies.
// The input slice is left untouched.
func Step(bodies []Body, links []Link, p Params) []Body {
	out := make([]Body, len(bodies))
	copy(out, bodies)
	force := make([]domain.Point, len(out))

	// Springs pull each link towards its rest length.
	for _, l := range links {
		if l.Source == l.Target || !valid(l, len(out)) {
			continue
		}
		s, t := out[l.Source], out[l.Target]
		d := t.Pos.Sub(s.Pos)
		dist := math.Hypot(d.X, d.Y)
		if dist == 0 {
			continue
		}
		strength := l.Strength
		if strength == 0 {
			strength = 1
		}
		corr := d.Scale(p.Alpha * strength * (dist - l.Distance) / dist)
		k := 0.5
		if ws, wt := s.Weight, t.Weight; ws+wt > 0 {
			k = float64(ws) / float64(ws+wt)
		}
		force[l.Target] = force[l.Target].Sub(corr.Scale(k))
		force[l.Source] = force[l.Source].Add(corr.Scale(1 - k))
	}

	// Gravity towards the center.
	center := p.Center()
	for i := range out {
		force[i] = force[i].Add(center.Sub(out[i].Pos).Scale(p.Alpha * p.Gravity))
	}

	// Pairwise repulsion, scaled by the charge of the other body.
	for i := range out {
		if out[i].Pinned {
			continue
		}
		for j := range out {
			if i == j {
				continue
			}
			d := out[j].Pos.Sub(out[i].Pos)
			dn := d.X*d.X + d.Y*d.Y
			if dn == 0 {
				d = domain.Point{X: coincident}
				if i > j {
					d.X = -coincident
				}
				dn = coincident * coincident
			}
			force[i] = force[i].Add(d.Scale(p.Alpha * out[j].Charge / dn))
		}
	}

	for i := range out {
		if out[i].Pinned {
			out[i].Vel = domain.Point{}
			continue
		}
		out[i].Vel = out[i].Vel.Add(force[i]).Scale(p.Friction)
		out[i].Pos = out[i].Pos.Add(out[i].Vel)
	}
	return out
}

func valid(l Link, n int) bool {
	return l.Source >= 0 && l.Source < n && l.Target >= 0 && l.Target < n
}
