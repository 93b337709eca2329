package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "./mydb.sqlite", cfg.Database.Path)
	assert.True(t, cfg.Database.InitSchema)
	assert.Equal(t, ":8501", cfg.Server.Addr)
	assert.Equal(t, 120, cfg.Server.SessionTTLMin)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.Equal(t, "utf-8", cfg.Loader.Encoding)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, cfg, GetConfig())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corphist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /data/history.sqlite
server:
  addr: ":9000"
loader:
  encoding: big5
`), 0o644))
	t.Setenv("CORPHIST_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/history.sqlite", cfg.Database.Path)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "big5", cfg.Loader.Encoding)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ".", cfg.Export.Dir)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
