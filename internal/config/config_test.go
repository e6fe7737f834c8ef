package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("yaml over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "deflens.yaml")
		src := `
defs:
  files: [ecma5.json, browser.json]
  dirs: [kb]
environment:
  prelude: [env.js]
log:
  format: json
`
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"ecma5.json", "browser.json"}, cfg.Defs.Files)
		assert.Equal(t, []string{"kb"}, cfg.Defs.Dirs)
		assert.True(t, cfg.Defs.Validate)
		assert.Equal(t, []string{"env.js"}, cfg.Environment.Prelude)
		assert.Equal(t, 256, cfg.Environment.MaxPrototypeDepth)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("DEFLENS_DEFS", "a.json, b.yaml,")
		t.Setenv("DEFLENS_LOG_LEVEL", "debug")
		t.Setenv("DEFLENS_MAX_PROTOTYPE_DEPTH", "12")

		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.json", "b.yaml"}, cfg.Defs.Files)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, 12, cfg.Environment.MaxPrototypeDepth)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("defs: [\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = NewLogger(LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}
