package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TIERSYNC_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("TIERSYNC_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TIERSYNC_TEST_UNSET_KEY", "fallback"))
}

func TestSetupEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TIERSYNC_FROM_FILE=file\nTIERSYNC_PRESET=file\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("TIERSYNC_PRESET", "env")
	t.Setenv("TIERSYNC_FROM_FILE", "")
	require.NoError(t, os.Unsetenv("TIERSYNC_FROM_FILE"))

	loaded, err := SetupEnvFile()
	require.NoError(t, err)
	assert.Equal(t, ".env", loaded)
	assert.Equal(t, "file", os.Getenv("TIERSYNC_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("TIERSYNC_PRESET"))
}

func TestSetupEnvFile_NoFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	loaded, err := SetupEnvFile()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
