package testutils

import (
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/stretchr/testify/require"

	quiverloam "github.com/aretw0/quiver/pkg/adapters/loam"
)

// SetupLibrary creates a temporary directory and opens an automaton library in it.
// It returns the absolute path to the temp dir and the library.
// It fails the test immediately on error.
func SetupLibrary(t *testing.T, opts ...loam.Option) (string, *quiverloam.Library) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	opts = append([]loam.Option{loam.WithForceTemp(false)}, opts...)
	lib, err := quiverloam.Open(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, lib
}
