package automaton

import (
	"github.com/aretw0/quiver/pkg/domain"
)

// Snapshot encodes the graph into its wire form.
func (g *Graph) Snapshot() *domain.Snapshot {
	snap := &domain.Snapshot{
		States:      make([]domain.StateRecord, 0, len(g.states)),
		Transitions: make([]domain.TransitionRecord, 0, len(g.transitions)),
		LastStateID: g.LastStateID(),
	}
	for _, s := range g.states {
		snap.States = append(snap.States, domain.Record(s))
	}
	for _, t := range g.transitions {
		snap.Transitions = append(snap.Transitions, domain.TransitionRecordOf(t))
	}
	return snap
}

// FromSnapshot rebuilds a graph from its wire form, repairing what it can.
//
//   - a transition without a source gets a synthesized "<target>.1" marker;
//   - a transition without a target gets a synthesized "<source>.2" marker;
//   - a transition naming an unknown state creates that state;
//   - a transition with neither endpoint, a duplicate (source, target) pair or a
//     duplicate or empty state id is dropped.
//
// The number of repairs is returned alongside the graph.
func FromSnapshot(snap *domain.Snapshot) (*Graph, int) {
	g := New()
	if snap == nil {
		return g, 0
	}

	repairs := 0
	states := make([]*domain.State, 0, len(snap.States))
	byID := make(map[string]*domain.State, len(snap.States))
	ensure := func(id string) *domain.State {
		if s, ok := byID[id]; ok {
			return s
		}
		s := domain.NewState(id)
		byID[id] = s
		states = append(states, s)
		return s
	}

	for _, rec := range snap.States {
		id := string(rec.ID)
		if _, dup := byID[id]; id == "" || dup {
			repairs++
			continue
		}
		s := ensure(id)
		s.Fixed = rec.Fixed
		if rec.X != nil && rec.Y != nil {
			s.X, s.Y, s.Placed = *rec.X, *rec.Y, true
		}
	}

	transitions := make([]*domain.Transition, 0, len(snap.Transitions))
	seen := make(map[string]struct{}, len(snap.Transitions))
	for _, rec := range snap.Transitions {
		src, dst := string(rec.Source), string(rec.Target)
		switch {
		case src == "" && dst == "":
			repairs++
			continue
		case src == "":
			src = domain.MarkerID(dst, domain.RoleInitialMarker)
			repairs++
		case dst == "":
			dst = domain.MarkerID(src, domain.RoleFinalMarker)
			repairs++
		}

		key := src + "->" + dst
		if _, dup := seen[key]; dup {
			repairs++
			continue
		}
		seen[key] = struct{}{}
		ids := []string{src}
		if dst != src {
			ids = append(ids, dst)
		}
		for _, id := range ids {
			if _, ok := byID[id]; !ok && !isSynthesized(id, rec) {
				repairs++
			}
		}
		transitions = append(transitions, &domain.Transition{
			Source: ensure(src),
			Target: ensure(dst),
			Label:  rec.Label,
		})
	}

	g.states = states
	g.transitions = transitions
	g.highWater = max(snap.LastStateID, g.LastStateID())
	g.revision++
	return g, repairs
}

// isSynthesized reports whether id is the marker made up for a one-sided record;
// those are counted once as the missing-endpoint repair.
func isSynthesized(id string, rec domain.TransitionRecord) bool {
	return (rec.Source == "" && id == domain.MarkerID(string(rec.Target), domain.RoleInitialMarker)) ||
		(rec.Target == "" && id == domain.MarkerID(string(rec.Source), domain.RoleFinalMarker))
}
