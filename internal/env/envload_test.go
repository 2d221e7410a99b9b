package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRecordsLoadedPath(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("WARRANTY_ENVLOAD_CHECK=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WARRANTY_ENVLOAD_CHECK") })
	t.Setenv("GOTEST_LOAD_DOTENV", "1")
	t.Chdir(dir)

	require.NoError(t, Ensure())
	want, err := filepath.EvalSymlinks(dotenv)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(LoadedPath())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "loaded", os.Getenv("WARRANTY_ENVLOAD_CHECK"))
}
