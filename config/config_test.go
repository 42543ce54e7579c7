package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, 800.0, cfg.Viewport.Width)
	assert.Equal(t, 600.0, cfg.Viewport.Height)
	assert.Equal(t, "screen", cfg.Viewport.Media)
	assert.Equal(t, 2*time.Second, cfg.Layout.Budget)
	assert.Equal(t, 16, cfg.Layout.FlexMaxRounds)
	assert.Equal(t, 16, cfg.Cache.Shards)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vformat.yaml")
	content := `
viewport:
  width: 1024
  media: print
layout:
  budget: 150ms
  paginate: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024.0, cfg.Viewport.Width)
	assert.Equal(t, 600.0, cfg.Viewport.Height)
	assert.Equal(t, "print", cfg.Viewport.Media)
	assert.Equal(t, 150*time.Millisecond, cfg.Layout.Budget)
	assert.True(t, cfg.Layout.Paginate)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("VFORMAT_VIEWPORT_WIDTH", "320")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 320.0, cfg.Viewport.Width)
}

func TestValidate(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Viewport.Width = 0 },
		func(c *Config) { c.Viewport.Media = "tv" },
		func(c *Config) { c.Viewport.ColorScheme = "sepia" },
		func(c *Config) { c.Layout.FlexMaxRounds = 0 },
		func(c *Config) { c.Layout.MaxSteps = -1 },
		func(c *Config) { c.Cache.Shards = 0 },
		func(c *Config) { c.Log.Format = "xml" },
	} {
		cfg := NewDefaultConfig()
		mutate(cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
	}

	cfg := NewDefaultConfig()
	cfg.Viewport.Media = "tv"
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorContains(t, err, `unsupported media type "tv"`)
	assert.ErrorContains(t, err, `unsupported log format "xml"`)
}
