package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/internal/config"
	"github.com/aretw0/quiver/pkg/adapters/file"
)

func TestExecute_PersistsSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = config.StoreFile
	cfg.Store.Path = t.TempDir()

	input := strings.Join([]string{
		`{"type":"pointer_down","x":300,"y":200}`,
		`{"type":"export","format":"daut"}`,
	}, "\n")
	var out, status bytes.Buffer
	err := Execute(context.Background(), RunOptions{
		Config:    cfg,
		SessionID: "cli-test",
		Input:     strings.NewReader(input),
		Output:    &out,
		Status:    &status,
	})
	require.NoError(t, err)
	assert.Contains(t, status.String(), "Session 'cli-test' active.")
	assert.Contains(t, out.String(), `"type":"mutations"`)
	assert.Contains(t, out.String(), `"type":"export"`)

	snap, err := file.New(cfg.Store.Path).Load(context.Background(), "cli-test")
	require.NoError(t, err)
	// Default seed (0 with both markers) plus the new state 1.
	assert.Len(t, snap.States, 4)
	assert.Equal(t, 1, snap.LastStateID)

	// A second run resumes where the first stopped.
	out.Reset()
	err = Execute(context.Background(), RunOptions{
		Config:    cfg,
		SessionID: "cli-test",
		Quiet:     true,
		Input:     strings.NewReader(`{"type":"snapshot"}`),
		Output:    &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"lastStateId":1`)
}

func TestExecute_UnknownAutomaton(t *testing.T) {
	cfg := config.DefaultConfig()
	err := Execute(context.Background(), RunOptions{
		Config:    cfg,
		Automaton: "nope",
		Quiet:     true,
		Input:     strings.NewReader(""),
		Output:    &bytes.Buffer{},
	})
	assert.Error(t, err)
}
