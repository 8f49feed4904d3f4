package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 180*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.Server.CORSOrigins)
	assert.Equal(t, "groq", cfg.AILink.DefaultProvider)
	assert.Zero(t, cfg.AILink.DefaultTimeout)
	assert.Equal(t, DefaultExecutorModel, cfg.AILink.Models.Executor)
	assert.Contains(t, cfg.AILink.AllowedTools, "browser_search")
	assert.Equal(t, GroqBaseURL, cfg.AILink.Providers["groq"].BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Images.Timeout)
	assert.Equal(t, 1600, cfg.Deck.MaxImageDimension)
	assert.False(t, cfg.Store.Enabled)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadBareEnvironmentNames(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("WEBSITE_PASSWORD", "geheim")
	t.Setenv("PEXELS_API_KEY", "px_test")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", cfg.ProviderAPIKey())
	assert.Equal(t, "geheim", cfg.Auth.Password)
	assert.Equal(t, "px_test", cfg.Images.APIKey)
	assert.NoError(t, cfg.Validate(true))
}

func TestLoadPrefixedEnvironment(t *testing.T) {
	t.Setenv("PROMPTDECK_SERVER_PORT", "8088")
	t.Setenv("PROMPTDECK_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PROMPTDECK_AILINK_DEFAULT_TIMEOUT", "45s")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 45*time.Second, cfg.AILink.DefaultTimeout)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ailink:
  models:
    executor: llama-3.3-70b-versatile
  allowed_tools: [browser_search]
store:
  enabled: true
  path: /tmp/history.db
`), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", cfg.AILink.Models.Executor)
	assert.Equal(t, []string{"browser_search"}, cfg.AILink.AllowedTools)
	assert.True(t, cfg.Store.Enabled)
	assert.Equal(t, "/tmp/history.db", cfg.Store.Path)
}

func TestValidate(t *testing.T) {
	for _, name := range []string{"GROQ_API_KEY", "PROMPTDECK_GROQ_API_KEY", "WEBSITE_PASSWORD", "PROMPTDECK_AUTH_PASSWORD"} {
		t.Setenv(name, "")
	}

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	err = cfg.Validate(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, err, ErrMissingPassword)

	err = cfg.Validate(false)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.NotErrorIs(t, err, ErrMissingPassword)
}

func TestDefaultStorePathUsesDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	assert.Equal(t, "promptdeck.db", filepath.Base(DefaultStorePath()))
}
