package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.HeaderRow)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, ":8501", cfg.Listen)
	assert.Equal(t, "Tasks", cfg.Calendar)
	assert.Equal(t, int64(32<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 3, cfg.ExtractOptions().HeaderRow)
}

func TestSetThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Set(path, "input", "/data/New Go Plastic Wanek 6.xlsx"))
	require.NoError(t, Set(path, "header_row", "4"))
	require.NoError(t, Set(path, "locale", "vi"))

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/data/New Go Plastic Wanek 6.xlsx", cfg.Input)
	assert.Equal(t, 4, cfg.HeaderRow)
	assert.Equal(t, "vi", cfg.Locale)
}

func TestNamedConfigMayNotExistYet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Tasks", cfg.Calendar)

	require.NoError(t, Set(path, "calendar", "Baron"))
	v, err = New(path)
	require.NoError(t, err)
	cfg, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "Baron", cfg.Calendar)
}

func TestBrokenConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("calendar: [unterminated\n"), 0600))
	_, err := New(path)
	assert.Error(t, err)
}

func TestSetRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.Error(t, Set(path, "colour", "red"))
	assert.Error(t, Set(path, "cache_size", "lots"))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Set(path, "listen", ":9000"))
	t.Setenv("BARONBOARD_LISTEN", ":9100")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Listen)
}

func TestNewMissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
