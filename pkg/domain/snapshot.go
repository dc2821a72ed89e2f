package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document keys shared with the host.
const (
	KeyStates      = "states"
	KeyTransitions = "transitions"
	KeyLastStateID = "lastStateId"
)

// ID is a state id at the host boundary.
// Hosts send ids either as JSON numbers or strings; both decode to the same ID.
type ID string

// UnmarshalJSON accepts numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("state id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// StateRecord is the wire form of a State.
type StateRecord struct {
	ID    ID       `json:"id" yaml:"id" mapstructure:"id"`
	X     *float64 `json:"x,omitempty" yaml:"x,omitempty" mapstructure:"x"`
	Y     *float64 `json:"y,omitempty" yaml:"y,omitempty" mapstructure:"y"`
	Fixed bool     `json:"fixed,omitempty" yaml:"fixed,omitempty" mapstructure:"fixed"`
}

// TransitionRecord is the wire form of a Transition.
// Either endpoint may be absent on input; see the load-time repair rules.
type TransitionRecord struct {
	Source ID     `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	Target ID     `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Label  string `json:"label" yaml:"label" mapstructure:"label"`
}

// Key identifies the (source, target) pair of a transition record.
func (r TransitionRecord) Key() string {
	return string(r.Source) + "->" + string(r.Target)
}

// Snapshot is the whole graph as exchanged with hosts and stores.
type Snapshot struct {
	States      []StateRecord      `json:"states" yaml:"states"`
	Transitions []TransitionRecord `json:"transitions" yaml:"transitions"`
	LastStateID int                `json:"lastStateId" yaml:"lastStateId"`
}

// NewSnapshot returns an empty graph snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		States:      []StateRecord{},
		Transitions: []TransitionRecord{},
		LastStateID: NoStateID,
	}
}

// Record converts a State into its wire form.
func Record(s *State) StateRecord {
	rec := StateRecord{ID: ID(s.ID), Fixed: s.Fixed}
	if s.Placed {
		x, y := s.X, s.Y
		rec.X, rec.Y = &x, &y
	}
	return rec
}

// TransitionRecordOf converts a Transition into its wire form.
func TransitionRecordOf(t *Transition) TransitionRecord {
	return TransitionRecord{
		Source: ID(t.Source.ID),
		Target: ID(t.Target.ID),
		Label:  t.Label,
	}
}

// Clone deep-copies the snapshot so stores never share slices with callers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		States:      make([]StateRecord, len(s.States)),
		Transitions: make([]TransitionRecord, len(s.Transitions)),
		LastStateID: s.LastStateID,
	}
	for i, r := range s.States {
		if r.X != nil {
			x := *r.X
			r.X = &x
		}
		if r.Y != nil {
			y := *r.Y
			r.Y = &y
		}
		out.States[i] = r
	}
	copy(out.Transitions, s.Transitions)
	return out
}
