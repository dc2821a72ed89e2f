package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(last int, states []StateRecord, transitions ...TransitionRecord) *Snapshot {
	if transitions == nil {
		transitions = []TransitionRecord{}
	}
	return &Snapshot{States: states, Transitions: transitions, LastStateID: last}
}

func TestDiff(t *testing.T) {
	one := 1

	tests := []struct {
		name     string
		old      *Snapshot
		new      *Snapshot
		wantDiff *GraphDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  snap(0, []StateRecord{{ID: "0"}}),
			wantDiff: &GraphDiff{
				SessionID:   "sess-1",
				AddedStates: []StateRecord{{ID: "0"}},
				LastStateID: &[]int{0}[0],
			},
		},
		{
			name:     "No Changes",
			old:      snap(0, []StateRecord{{ID: "0"}}),
			new:      snap(0, []StateRecord{{ID: "0"}}),
			wantDiff: nil,
		},
		{
			name: "Moved Only",
			old:  snap(0, []StateRecord{{ID: "0", X: ptr(1), Y: ptr(1)}}),
			new:  snap(0, []StateRecord{{ID: "0", X: ptr(5), Y: ptr(9)}}),
		},
		{
			name: "State Added",
			old:  snap(0, []StateRecord{{ID: "0"}}),
			new:  snap(1, []StateRecord{{ID: "0"}, {ID: "1"}}),
			wantDiff: &GraphDiff{
				SessionID:   "sess-1",
				AddedStates: []StateRecord{{ID: "1"}},
				LastStateID: &one,
			},
		},
		{
			name: "Pinned",
			old:  snap(0, []StateRecord{{ID: "0"}}),
			new:  snap(0, []StateRecord{{ID: "0", Fixed: true}}),
			wantDiff: &GraphDiff{
				SessionID:    "sess-1",
				PinnedStates: []ID{"0"},
			},
		},
		{
			name: "Transition Relabeled",
			old:  snap(1, []StateRecord{{ID: "0"}, {ID: "1"}}, TransitionRecord{Source: "0", Target: "1", Label: "b"}),
			new:  snap(1, []StateRecord{{ID: "0"}, {ID: "1"}}, TransitionRecord{Source: "0", Target: "1", Label: "x"}),
			wantDiff: &GraphDiff{
				SessionID:            "sess-1",
				RelabeledTransitions: []TransitionRecord{{Source: "0", Target: "1", Label: "x"}},
			},
		},
		{
			name: "Cascade Removal",
			old: snap(1, []StateRecord{{ID: "0"}, {ID: "1"}, {ID: "1.2"}},
				TransitionRecord{Source: "0", Target: "1", Label: "b"},
				TransitionRecord{Source: "1", Target: "1.2"}),
			new: snap(0, []StateRecord{{ID: "0"}}),
			wantDiff: &GraphDiff{
				SessionID:     "sess-1",
				RemovedStates: []ID{"1", "1.2"},
				RemovedTransitions: []TransitionRecord{
					{Source: "0", Target: "1", Label: "b"},
					{Source: "1", Target: "1.2"},
				},
				LastStateID: &[]int{0}[0],
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff("sess-1", tt.old, tt.new)
			assert.Equal(t, tt.wantDiff, got)
		})
	}
}

func TestDiff_NilNew(t *testing.T) {
	assert.Nil(t, Diff("s", NewSnapshot(), nil))
}

func TestGraphDiff_JSONOmitsEmpty(t *testing.T) {
	d := &GraphDiff{SessionID: "s", RemovedStates: []ID{"3"}}
	bytes, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"s","removed_states":["3"]}`, string(bytes))
}

func ptr(f float64) *float64 { return &f }
