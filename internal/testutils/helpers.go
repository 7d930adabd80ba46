package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SmokersModel is the classic smokers network used across tests.
const SmokersModel = `Smokes(person)
Cancer(person)
1.5 Smokes(x) => Cancer(x)
`

// WriteFiles creates a temporary directory holding files (relative path to
// content) and returns its absolute path. It fails the test immediately on
// error.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return dir
}
