// Package geometry computes how transitions are drawn.
// Everything here is a pure function of the topology and the current positions.
package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/quiver/pkg/domain"
)

// Kind is the shape of a transition curve.
type Kind int

const (
	// KindLine is a straight padded segment (no reverse transition).
	KindLine Kind = iota
	// KindArc is a quadratic curve (a reverse transition exists).
	KindArc
	// KindLoop is the fixed cubic drawn above a state.
	KindLoop
)

func (k Kind) String() string {
	switch k {
	case KindArc:
		return "arc"
	case KindLoop:
		return "loop"
	default:
		return "line"
	}
}

// Drawing constants.
const (
	// StateRadius is the radius a state is drawn and hit-tested with.
	StateRadius = 20.0

	SourcePadding = 20.0
	TargetPadding = 29.0

	// LabelLift raises the label of a straight transition above its midpoint.
	LabelLift = 8.0

	// ArcShift moves both ends of a reciprocal arc off the center line.
	ArcShift = 10.0
	// ArcBend is the distance of the arc control point from the center line.
	ArcBend = 30.0
)

// Loop shape, relative to the state center.
var (
	loopStart    = domain.Point{X: -5, Y: -17}
	loopControl1 = domain.Point{X: -50, Y: -50}
	loopControl2 = domain.Point{X: 50, Y: -50}
	loopEnd      = domain.Point{X: 18, Y: -9}
	loopLabel    = domain.Point{X: -5, Y: -60}
)

// Spring parameters.
const (
	ShortLinkDistance = 75.0
	LongLinkDistance  = 175.0
	HiddenCharge      = -100.0
	VisibleCharge     = -750.0
)

// Curve is a renderable transition path with its label anchor.
// Control2 is only meaningful for KindLoop; Control1 is unused for KindLine.
type Curve struct {
	Kind     Kind         `json:"kind"`
	Start    domain.Point `json:"start"`
	Control1 domain.Point `json:"control1"`
	Control2 domain.Point `json:"control2"`
	End      domain.Point `json:"end"`
	Label    domain.Point `json:"label"`
}

// Compute returns the curve of t given every transition of the graph.
func Compute(t *domain.Transition, all []*domain.Transition) Curve {
	if t.IsLoop() {
		return loop(t.Source.Pos())
	}

	src, dst := t.Source.Pos(), t.Target.Pos()
	dir := direction(src, dst)
	if src == dst && t.Source.ID > t.Target.ID {
		// Coincident ends: keep the two directions of a pair on opposite sides.
		dir = dir.Scale(-1)
	}
	start := src.Add(dir.Scale(SourcePadding))
	end := dst.Sub(dir.Scale(TargetPadding))

	if !HasReverse(t, all) {
		mid := midpoint(src, dst)
		return Curve{
			Kind:  KindLine,
			Start: start,
			End:   end,
			Label: domain.Point{X: mid.X, Y: mid.Y - LabelLift},
		}
	}

	n := normal(dir)
	control := midpoint(start, end).Add(n.Scale(ArcBend))
	return Curve{
		Kind:     KindArc,
		Start:    start.Add(n.Scale(ArcShift)),
		Control1: control,
		End:      end.Add(n.Scale(ArcShift)),
		Label:    control,
	}
}

func loop(at domain.Point) Curve {
	start := at.Add(loopStart)
	return Curve{
		Kind:     KindLoop,
		Start:    start,
		Control1: start.Add(loopControl1),
		Control2: start.Add(loopControl2),
		End:      start.Add(loopEnd),
		Label:    at.Add(loopLabel),
	}
}

// HasReverse reports whether the transition in the opposite direction exists.
func HasReverse(t *domain.Transition, all []*domain.Transition) bool {
	if t.IsLoop() {
		return false
	}
	for _, o := range all {
		if o.Source == t.Target && o.Target == t.Source {
			return true
		}
	}
	return false
}

// LinkDistance is the rest length of the spring for t.
func LinkDistance(t *domain.Transition) float64 {
	if t.IsShort() {
		return ShortLinkDistance
	}
	return LongLinkDistance
}

// Charge is the repulsion strength of s.
func Charge(s *domain.State) float64 {
	if domain.IsHidden(s) {
		return HiddenCharge
	}
	return VisibleCharge
}

// PerpendicularOffset is the signed distance of p from the line a -> b,
// positive on the side of the normal used for arcs.
func PerpendicularOffset(a, b, p domain.Point) float64 {
	n := normal(direction(a, b))
	d := p.Sub(a)
	return d.X*n.X + d.Y*n.Y
}

// direction is the unit vector from a to b, or (1, 0) when they coincide.
func direction(a, b domain.Point) domain.Point {
	d := b.Sub(a)
	dist := math.Hypot(d.X, d.Y)
	if dist == 0 || math.IsNaN(dist) {
		return domain.Point{X: 1}
	}
	return d.Scale(1 / dist)
}

func normal(dir domain.Point) domain.Point {
	return domain.Point{X: -dir.Y, Y: dir.X}
}

func midpoint(a, b domain.Point) domain.Point {
	return domain.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// SVGPath renders the curve as an SVG path in absolute coordinates.
func (c Curve) SVGPath() string {
	var b strings.Builder
	fmt.Fprintf(&b, "M%s,%s", num(c.Start.X), num(c.Start.Y))
	switch c.Kind {
	case KindLoop:
		fmt.Fprintf(&b, "C%s,%s %s,%s %s,%s",
			num(c.Control1.X), num(c.Control1.Y),
			num(c.Control2.X), num(c.Control2.Y),
			num(c.End.X), num(c.End.Y))
	case KindArc:
		fmt.Fprintf(&b, "Q%s,%s %s,%s",
			num(c.Control1.X), num(c.Control1.Y),
			num(c.End.X), num(c.End.Y))
	default:
		fmt.Fprintf(&b, "L%s,%s", num(c.End.X), num(c.End.Y))
	}
	return b.String()
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
