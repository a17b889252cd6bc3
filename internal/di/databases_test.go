package di

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/qdash/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabases(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &config.Config{
		DataDir: tmpDir,
	}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.StateDB)
	assert.NotNil(t, container.KV)
	assert.FileExists(t, filepath.Join(tmpDir, "state.db"))

	// kv table is migrated
	require.NoError(t, container.KV.Set("probe", map[string]bool{"ok": true}))
	value, err := container.KV.GetRaw("probe")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(value))
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	// A regular file where the data directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := &config.Config{
		DataDir: filepath.Join(blocker, "data"),
	}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestContainer_CloseEmpty(t *testing.T) {
	container := &Container{}
	assert.NoError(t, container.Close())
}
