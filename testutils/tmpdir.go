package testutils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTmpDir creates a temporary directory, changes into it and restores the working directory on cleanup.
func SetupTmpDir(t *testing.T) string {
	tempDir := t.TempDir()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	err = os.Chdir(tempDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
	})

	return tempDir
}
