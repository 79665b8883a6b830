package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jingkaihe/skillhub/pkg/catalog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	Init(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Downloads", "my-skills"), cfg.Workspace)
	assert.Equal(t, catalog.DefaultBaseURL, cfg.Catalog.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, catalog.DefaultRetryConfig, cfg.Catalog.Retry)
	assert.Equal(t, 1, cfg.Catalog.Retry.Attempts, "retries are opt-in")
	assert.Equal(t, "main.py", cfg.Agent.Script)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.Agent.Env)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `workspace: /srv/skills
catalog:
  api_key: sk_live_test
  timeout: 5s
  retry:
    attempts: 5
    backoff_type: fixed
agent:
  api_key: sk-ant-test
  interpreter: /usr/bin/python3
  env:
    ANTHROPIC_BASE_URL: http://localhost:8080
    MAX_TURNS: 12
log_level: debug
log_format: json
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, ReadInConfig(v))

	cfg, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "/srv/skills", cfg.Workspace)
	assert.Equal(t, "sk_live_test", cfg.Catalog.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 5, cfg.Catalog.Retry.Attempts)
	assert.Equal(t, "fixed", cfg.Catalog.Retry.BackoffType)
	assert.Equal(t, catalog.DefaultRetryConfig.MaxDelay, cfg.Catalog.Retry.MaxDelay)
	assert.Equal(t, "sk-ant-test", cfg.AgentAPIKey())
	assert.Equal(t, "/usr/bin/python3", cfg.Agent.Interpreter)
	assert.Equal(t, map[string]string{
		"ANTHROPIC_BASE_URL": "http://localhost:8080",
		"MAX_TURNS":          "12",
	}, cfg.Agent.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SKILLHUB_WORKSPACE", "/env/ws")
	t.Setenv("SKILLHUB_CATALOG_API_KEY", "from-env")
	t.Setenv("SKILLHUB_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(newViper())
	require.NoError(t, err)

	assert.Equal(t, "/env/ws", cfg.Workspace)
	assert.Equal(t, "from-env", cfg.Catalog.APIKey)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestRetryAttemptsAreKeptAsConfigured(t *testing.T) {
	t.Run("explicit single attempt", func(t *testing.T) {
		t.Setenv("SKILLHUB_CATALOG_RETRY_ATTEMPTS", "1")
		cfg, err := LoadFrom(newViper())
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.Catalog.Retry.Attempts)
	})

	t.Run("opt in to retries", func(t *testing.T) {
		t.Setenv("SKILLHUB_CATALOG_RETRY_ATTEMPTS", "4")
		cfg, err := LoadFrom(newViper())
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Catalog.Retry.Attempts)
		assert.Equal(t, catalog.DefaultRetryConfig.BackoffType, cfg.Catalog.Retry.BackoffType)
	})
}

func TestMissingConfigFileIsNotAnError(t *testing.T) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(t.TempDir())
	assert.NoError(t, ReadInConfig(v))
}

func TestAgentAPIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-from-env")
	assert.Equal(t, "sk-from-env", Config{}.AgentAPIKey())
	assert.Equal(t, "explicit", Config{Agent: AgentConfig{APIKey: "explicit"}}.AgentAPIKey())
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Config{Workspace: "/ws", LogFormat: "json"}.Validate())
	assert.Error(t, Config{Workspace: " "}.Validate())
	assert.Error(t, Config{Workspace: "/ws", LogFormat: "xml"}.Validate())
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in       string
		expected string
	}{
		{"~", home},
		{"~/Downloads/my-skills", filepath.Join(home, "Downloads", "my-skills")},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
		{"~other/path", "~other/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExpandHome(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
