package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetSecrets(t *testing.T) {
	t.Helper()
	secretsMu.Lock()
	secrets = nil
	secretsMu.Unlock()
	t.Cleanup(func() {
		secretsMu.Lock()
		secrets = nil
		secretsMu.Unlock()
	})
}

func TestSecretsRoundTrip(t *testing.T) {
	resetSecrets(t)
	dir := t.TempDir()

	assert.False(t, SecretsFileExists(dir))

	SetSecret(EnvAnthropicKey, "sk-ant-test")
	SetSecret(EnvTavilyKey, "tvly-test")
	require.NoError(t, SaveSecrets(dir, "correct horse"))
	assert.True(t, SecretsFileExists(dir))

	// Wipe memory and reload from disk
	secretsMu.Lock()
	secrets = nil
	secretsMu.Unlock()
	assert.Empty(t, GetSecret(EnvAnthropicKey))

	require.NoError(t, LoadSecrets(dir, "correct horse"))
	assert.Equal(t, "sk-ant-test", GetSecret(EnvAnthropicKey))
	assert.Equal(t, "tvly-test", GetSecret(EnvTavilyKey))
	assert.ElementsMatch(t, []string{EnvAnthropicKey, EnvTavilyKey}, SecretNames())
}

func TestLoadSecretsWrongPassword(t *testing.T) {
	resetSecrets(t)
	dir := t.TempDir()

	SetSecret(EnvGoogleKey, "value")
	require.NoError(t, SaveSecrets(dir, "right"))

	err := LoadSecrets(dir, "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong password")
}

func TestLoadSecretsMissingFile(t *testing.T) {
	resetSecrets(t)
	assert.Error(t, LoadSecrets(t.TempDir(), "pw"))
}
