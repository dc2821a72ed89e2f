package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/adapters/memory"
	"github.com/aretw0/quiver/pkg/domain"
)

const testScript = `
daut: |
  $ -> 0
  0 -> 1 a
events:
  - {type: pointer_down, x: 200, y: 120}
  - {type: pointer_up, x: 200, y: 120}
  - {action: final, state: 2}
  - {action: delete, source: 0, target: 1}
ticks: 5
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReplay(t *testing.T) {
	script, err := LoadScript(writeScript(t, testScript))
	require.NoError(t, err)
	assert.Equal(t, 5, script.Ticks)
	require.Len(t, script.Events, 4)

	seed, ok, err := script.Seed()
	require.NoError(t, err)
	require.True(t, ok)

	ctx := context.Background()
	editor, err := NewEditor(ctx, config.DefaultConfig(), logging.NewNop(), memory.NewSnapshotDocument(seed))
	require.NoError(t, err)

	res, err := Replay(ctx, editor, script)
	require.NoError(t, err)

	kinds := make([]domain.MutationKind, 0, len(res.Mutations))
	for _, m := range res.Mutations {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []domain.MutationKind{
		domain.MutationStateAdded,      // state 2
		domain.MutationStateAdded,      // final marker 2.2
		domain.MutationTransitionAdded, // 2 -> 2.2
		domain.MutationTransitionRemoved,
	}, kinds)

	ids := map[domain.ID]bool{}
	for _, s := range res.Snapshot.States {
		ids[s.ID] = true
	}
	for _, id := range []domain.ID{"0", "1", "2", "0.1", "2.2"} {
		assert.True(t, ids[id], "missing state %s", id)
	}
	assert.Len(t, res.Snapshot.Transitions, 2)
}

func TestReplay_BadEntry(t *testing.T) {
	ctx := context.Background()
	editor, err := NewEditor(ctx, config.DefaultConfig(), logging.NewNop(), memory.NewSnapshotDocument(nil))
	require.NoError(t, err)

	_, err = Replay(ctx, editor, &Script{Events: []map[string]any{
		{"type": "pointer_down", "x": 10, "y": 10},
		{"type": "teleport"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event 1")
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)

	_, err = Replay(ctx, editor, &Script{Events: []map[string]any{{"action": "pin"}}})
	assert.Error(t, err)

	_, err = Replay(ctx, editor, &Script{Events: []map[string]any{{"action": "pin", "state": 99}}})
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestLoadScript_Missing(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
