package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	require.NoError(t, Load(filepath.Join(t.TempDir(), "missing.json")))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, cfg.Interviewer.Provider)
	assert.Equal(t, DefaultJudgeModel, cfg.Judge.Model)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, ".interviewsim", cfg.DataDir)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"schema_version": 1,
		"interviewer": {"provider": "anthropic", "model": "claude-sonnet-4"},
		"judge": {"provider": "openai", "model": "gpt-4o"},
		"search": {"enabled": false},
		"data_dir": "/tmp/ivs"
	}`), 0644))

	require.NoError(t, Load(path))

	cfg, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Interviewer.Provider)
	assert.Equal(t, "gpt-4o", cfg.Judge.Model)
	assert.False(t, cfg.Search.Enabled)
	// Unset values still get defaults
	assert.Equal(t, 3, cfg.Search.MaxResults)
	assert.Equal(t, DefaultOllamaHost, cfg.OllamaHost)
	assert.Equal(t, "/tmp/ivs", cfg.DataDir)
}

func TestLoadRejectsWrongSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"schema_version": 99,
		"interviewer": {"provider": "google", "model": "m"},
		"judge": {"provider": "google", "model": "m"}
	}`), 0644))

	err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 99")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"missing provider", func(c *Config) { c.Judge.Provider = "" }, "judge provider must be set"},
		{"unknown provider", func(c *Config) { c.Interviewer.Provider = "mistral" }, `unknown interviewer provider "mistral"`},
		{"missing model", func(c *Config) { c.Interviewer.Model = "" }, "interviewer model must be set"},
		{"non-google vision", func(c *Config) { c.Vision.Provider = ProviderOpenAI }, "vision provider"},
		{"vision without model", func(c *Config) { c.Vision.Model = "" }, "vision model must be set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAPIKeyForPrefersSecrets(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "env-key")

	assert.Equal(t, "env-key", APIKeyFor(ProviderOpenAI))

	SetSecret(EnvOpenAIKey, "stored-key")
	t.Cleanup(func() { SetSecret(EnvOpenAIKey, "") })
	assert.Equal(t, "stored-key", APIKeyFor(ProviderOpenAI))

	// Local runtime needs no credential
	assert.Empty(t, APIKeyFor(ProviderOllama))
}

func TestCheckProviderCredentials(t *testing.T) {
	t.Setenv(EnvGoogleKey, "")
	t.Setenv(EnvAnthropicKey, "")

	cfg := DefaultConfig()
	cfg.Vision = nil

	err := CheckProviderCredentials(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")

	t.Setenv(EnvGoogleKey, "a-key")
	assert.NoError(t, CheckProviderCredentials(&cfg))

	// Ollama roles never require a key
	cfg.Interviewer = ModelConfig{Provider: ProviderOllama, Model: "llama3"}
	cfg.Judge = ModelConfig{Provider: ProviderOllama, Model: "llama3"}
	t.Setenv(EnvGoogleKey, "")
	assert.NoError(t, CheckProviderCredentials(&cfg))
}

func TestDataDirLayout(t *testing.T) {
	cfg := Config{DataDir: "/srv/ivs"}
	assert.Equal(t, filepath.Join("/srv/ivs", "interview_sessions.db"), DatabasePath(&cfg))
	assert.Equal(t, filepath.Join("/srv/ivs", "snapshots"), SnapshotDir(&cfg))
	assert.Equal(t, filepath.Join("/srv/ivs", "metrics"), MetricsDir(&cfg))
	assert.Equal(t, filepath.Join("/srv/ivs", "reports"), ReportsDir(&cfg))
}
