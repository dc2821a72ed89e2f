package domain

import (
	"reflect"
	"sort"
)

// GraphDiff represents the structural changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on subscribers.
// Positions are not diffed: they change on every layout tick.
type GraphDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	AddedStates   []StateRecord `json:"added_states,omitempty"`
	RemovedStates []ID          `json:"removed_states,omitempty"`
	// PinnedStates lists states whose fixed flag turned on.
	PinnedStates []ID `json:"pinned_states,omitempty"`

	AddedTransitions     []TransitionRecord `json:"added_transitions,omitempty"`
	RemovedTransitions   []TransitionRecord `json:"removed_transitions,omitempty"`
	RelabeledTransitions []TransitionRecord `json:"relabeled_transitions,omitempty"`

	LastStateID *int `json:"last_state_id,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing structural changed.
func Diff(sessionID string, oldSnap, newSnap *Snapshot) *GraphDiff {
	if newSnap == nil {
		return nil
	}
	initial := oldSnap == nil
	if initial {
		oldSnap = NewSnapshot()
	}

	diff := &GraphDiff{SessionID: sessionID}
	diffStates(diff, oldSnap, newSnap)
	diffTransitions(diff, oldSnap, newSnap)

	if initial || oldSnap.LastStateID != newSnap.LastStateID {
		last := newSnap.LastStateID
		diff.LastStateID = &last
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffStates(diff *GraphDiff, old, new *Snapshot) {
	before := make(map[ID]StateRecord, len(old.States))
	for _, s := range old.States {
		before[s.ID] = s
	}
	after := make(map[ID]struct{}, len(new.States))
	for _, s := range new.States {
		after[s.ID] = struct{}{}
		prev, exists := before[s.ID]
		if !exists {
			diff.AddedStates = append(diff.AddedStates, s)
			continue
		}
		if s.Fixed && !prev.Fixed {
			diff.PinnedStates = append(diff.PinnedStates, s.ID)
		}
	}
	for _, s := range old.States {
		if _, exists := after[s.ID]; !exists {
			diff.RemovedStates = append(diff.RemovedStates, s.ID)
		}
	}
	sort.Slice(diff.RemovedStates, func(i, j int) bool { return diff.RemovedStates[i] < diff.RemovedStates[j] })
}

func diffTransitions(diff *GraphDiff, old, new *Snapshot) {
	before := make(map[string]TransitionRecord, len(old.Transitions))
	for _, t := range old.Transitions {
		before[t.Key()] = t
	}
	after := make(map[string]struct{}, len(new.Transitions))
	for _, t := range new.Transitions {
		after[t.Key()] = struct{}{}
		prev, exists := before[t.Key()]
		switch {
		case !exists:
			diff.AddedTransitions = append(diff.AddedTransitions, t)
		case !reflect.DeepEqual(prev, t):
			diff.RelabeledTransitions = append(diff.RelabeledTransitions, t)
		}
	}
	for _, t := range old.Transitions {
		if _, exists := after[t.Key()]; !exists {
			diff.RemovedTransitions = append(diff.RemovedTransitions, t)
		}
	}
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedStates) == 0 &&
		len(d.RemovedStates) == 0 &&
		len(d.PinnedStates) == 0 &&
		len(d.AddedTransitions) == 0 &&
		len(d.RemovedTransitions) == 0 &&
		len(d.RelabeledTransitions) == 0 &&
		d.LastStateID == nil
}
