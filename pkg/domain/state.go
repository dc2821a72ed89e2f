package domain

import (
	"strconv"
	"strings"
)

// Role tags a State with its part in the automaton.
type Role int

const (
	// RoleOrdinary is a regular automaton state.
	RoleOrdinary Role = iota
	// RoleInitialMarker is the hidden source of the initial arrow of its owner.
	RoleInitialMarker
	// RoleFinalMarker is the hidden target of the final arrow of its owner.
	RoleFinalMarker
)

// Marker id suffixes used at the host boundary.
const (
	InitialSuffix = ".1"
	FinalSuffix   = ".2"
)

// NoStateID is reported as the last state id when no Visible state exists.
const NoStateID = -1

func (r Role) String() string {
	switch r {
	case RoleInitialMarker:
		return "initial"
	case RoleFinalMarker:
		return "final"
	default:
		return "ordinary"
	}
}

// Visibility is the render classification of a State.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// Point is a position on the editor canvas.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale multiplies both coordinates by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// State is a node of the automaton.
// Position fields are owned by the layout engine once the state is placed.
type State struct {
	ID    string
	Role  Role
	Owner string // id of the ordinary state a marker belongs to
	X, Y  float64
	Fixed bool

	// Placed is false until the state received a position (from the pointer,
	// the host document or the layout seeding).
	Placed bool
}

// Pos returns the current position of the state.
func (s *State) Pos() Point { return Point{X: s.X, Y: s.Y} }

// IntID parses the id as an integer if it round-trips.
func IntID(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || strconv.Itoa(n) != id {
		return 0, false
	}
	return n, true
}

// Classify reports whether a state is rendered.
// A state is Hidden iff its id does not round-trip through integer parsing.
func Classify(s *State) Visibility {
	if s == nil {
		return Hidden
	}
	if _, ok := IntID(s.ID); ok {
		return Visible
	}
	return Hidden
}

// IsHidden is shorthand for Classify(s) == Hidden.
func IsHidden(s *State) bool { return Classify(s) == Hidden }

// MarkerID builds the boundary id of a marker pseudo-state.
func MarkerID(owner string, role Role) string {
	switch role {
	case RoleInitialMarker:
		return owner + InitialSuffix
	case RoleFinalMarker:
		return owner + FinalSuffix
	default:
		return owner
	}
}

// ParseStateID recovers the role encoded in a boundary id.
// "3" is ordinary, "3.1" the initial marker of "3", "3.2" its final marker.
// Anything else is an ordinary (and Hidden) state.
func ParseStateID(id string) (Role, string) {
	for _, m := range []struct {
		suffix string
		role   Role
	}{{InitialSuffix, RoleInitialMarker}, {FinalSuffix, RoleFinalMarker}} {
		owner, found := strings.CutSuffix(id, m.suffix)
		if !found {
			continue
		}
		if _, ok := IntID(owner); ok {
			return m.role, owner
		}
	}
	return RoleOrdinary, ""
}

// NewState builds a state from a boundary id, deriving its role.
func NewState(id string) *State {
	role, owner := ParseStateID(id)
	return &State{ID: id, Role: role, Owner: owner}
}
