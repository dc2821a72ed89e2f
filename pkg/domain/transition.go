package domain

// Transition is a labeled edge between two States.
// Endpoints are held by identity; ids are only resolved at the boundary.
type Transition struct {
	Source *State
	Target *State
	Label  string
}

// IsLoop reports whether the transition starts and ends on the same state.
func (t *Transition) IsLoop() bool {
	return t.Source == t.Target
}

// IsShort reports whether either endpoint is a pseudo-state.
func (t *Transition) IsShort() bool {
	return IsHidden(t.Source) || IsHidden(t.Target)
}

// IsMarker reports whether the transition is an initial or final arrow.
func (t *Transition) IsMarker() bool {
	return t.Source.Role != RoleOrdinary || t.Target.Role != RoleOrdinary
}

// Touches reports whether s is an endpoint of the transition.
func (t *Transition) Touches(s *State) bool {
	return t.Source == s || t.Target == s
}
