package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into a fresh directory so config and log files
// written by commands land there.
func chdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	originalWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(originalWD)) })

	return dir
}
