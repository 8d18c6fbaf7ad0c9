package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// An explicit path that is missing is an error; load without a path
	// instead to exercise defaults.
	require.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeAuto, cfg.Chunking.Mode)
	assert.InDelta(t, 10.0, cfg.Chunking.Percent, 1e-9)
	assert.False(t, cfg.Chunking.IncludeSwap)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chunkpace.yaml")
	content := `
chunking:
  mode: bytes
  bytes: 4MiB
  include_swap: true
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ModeBytes, cfg.Chunking.Mode)
	assert.Equal(t, "4MiB", cfg.Chunking.Bytes)
	assert.True(t, cfg.Chunking.IncludeSwap)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_InvalidMode_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chunkpace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  mode: turbo\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestLoad_InvalidBytesSize_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chunkpace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  mode: bytes\n  bytes: lots\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestLoad_InvalidPercent_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chunkpace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  mode: percent\n  percent: -5\n"), 0o600))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidPercent)
}
