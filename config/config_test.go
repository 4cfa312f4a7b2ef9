package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Metadata.BaseURL)
	assert.Equal(t, "en-US", cfg.Metadata.Language)
	assert.Equal(t, time.Duration(0), cfg.Metadata.Timeout)
	assert.False(t, cfg.HasCredential())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moviegate.yaml")
	body := []byte(`
metadata:
  api_key: from-file
  language: fr-FR
  timeout: 15s
wallet:
  poll_interval: 500ms
server:
  addr: ":9999"
  allowed_origins: ["https://movies.example.com"]
`)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvAddr, "")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Metadata.APIKey)
	assert.Equal(t, "fr-FR", cfg.Metadata.Language)
	assert.Equal(t, 15*time.Second, cfg.Metadata.Timeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Wallet.PollInterval)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, []string{"https://movies.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.HasCredential())
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wallet:\n  poll_interval: -1s\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("metadata: [oops"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
