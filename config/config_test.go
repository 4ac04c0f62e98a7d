package config_test

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/prior-it/hermes/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("ok: defaults are used when there is no config.toml", func(t *testing.T) {
		cfg, err := config.Load(fstest.MapFS{}, "testdata/none.env")
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.App.Host)
		assert.Equal(t, uint32(3000), cfg.App.Port)
		assert.Equal(t, "0.0.0.0:3000", cfg.Address())
		assert.Equal(t, "templates", cfg.Templates.Dir)
		assert.Equal(t, "assets/js", cfg.Assets.Scripts)
		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.False(t, cfg.WatchTemplates())
	})

	t.Run("ok: config.toml values override defaults", func(t *testing.T) {
		fs := fstest.MapFS{
			"config.toml": &fstest.MapFile{Data: []byte(`
[app]
port = 8080
name = "hermes-test"
debug = true

[templates]
dir = "views"
debounce = 50

[log]
format = "plaintext"
level = "debug"
`)},
		}
		cfg, err := config.Load(fs, "testdata/none.env")
		require.NoError(t, err)

		assert.Equal(t, uint32(8080), cfg.App.Port)
		assert.Equal(t, "hermes-test", cfg.App.Name)
		assert.Equal(t, "views", cfg.Templates.Dir)
		assert.Equal(t, int32(50), cfg.Templates.Debounce)
		assert.Equal(t, config.LogFormatPlaintext, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level.ToSlog())
		assert.True(t, cfg.WatchTemplates(), "debug mode should always watch templates")
	})

	t.Run("ok: environment overrides config.toml", func(t *testing.T) {
		t.Setenv("APP_PORT", "4000")
		t.Setenv("TEMPLATES_DIR", "/srv/templates")
		fs := fstest.MapFS{
			"config.toml": &fstest.MapFile{Data: []byte("[app]\nport = 8080\n")},
		}
		cfg, err := config.Load(fs, "testdata/none.env")
		require.NoError(t, err)

		assert.Equal(t, uint32(4000), cfg.App.Port)
		assert.Equal(t, "/srv/templates", cfg.Templates.Dir)
	})

	t.Run("err: invalid toml", func(t *testing.T) {
		fs := fstest.MapFS{
			"config.toml": &fstest.MapFile{Data: []byte("[app\nport = ")},
		}
		_, err := config.Load(fs, "testdata/none.env")
		assert.Error(t, err)
	})
}

func TestBaseURL(t *testing.T) {
	cfg := config.Config{App: config.AppConfig{Host: "localhost", Port: 3000}}
	assert.Equal(t, "http://localhost:3000", cfg.BaseURL())

	cfg.App.ProxyPort = 7331
	cfg.App.SSL = true
	assert.Equal(t, "https://localhost:7331", cfg.BaseURL())

	cfg.App.URL = "hermes.example.com"
	assert.Equal(t, "https://hermes.example.com", cfg.BaseURL())
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, config.LogLevelWarn.ToSlog())
	assert.Equal(t, slog.LevelError, config.LogLevel("error").ToSlog())
	assert.Equal(t, slog.LevelInfo, config.LogLevel("unknown").ToSlog())
}
