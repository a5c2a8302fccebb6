package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parleychat/parley"
	"github.com/parleychat/parley/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "dark", cfg.Theme)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
provider = "openrouter"
model = "meta/llama"
theme = "light"

[keys]
gemini = "g-key"
openrouter = "or-key"

[backends]
openrouter_url = "http://localhost:9999"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openrouter", cfg.Provider)
	assert.Equal(t, "meta/llama", cfg.Model)
	assert.Equal(t, "light", cfg.Theme)
	assert.Equal(t, "g-key", cfg.Keys.Gemini)
	assert.Equal(t, "or-key", cfg.Keys.OpenRouter)
	assert.Equal(t, "http://localhost:9999", cfg.Backends.OpenRouterURL)
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, `provider = [broken`)

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[keys]
gemini = "from-file"
`)
	t.Setenv(config.EnvGeminiKey, "from-env")
	t.Setenv(config.EnvHFToken, "hf-from-env")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Keys.Gemini)
	assert.Equal(t, "hf-from-env", cfg.Keys.HFace)
}

func TestKey(t *testing.T) {
	t.Parallel()

	cfg := config.Config{Keys: config.KeysConfig{
		Gemini:     "g-key",
		OpenRouter: "PLACE_YOUR_KEY_HERE",
	}}

	t.Run("present", func(t *testing.T) {
		t.Parallel()
		key, ok := cfg.Key(parley.ProviderGemini)
		assert.True(t, ok)
		assert.Equal(t, "g-key", key)
	})

	t.Run("placeholder counts as absent", func(t *testing.T) {
		t.Parallel()
		_, ok := cfg.Key(parley.ProviderOpenRouter)
		assert.False(t, ok)
	})

	t.Run("empty counts as absent", func(t *testing.T) {
		t.Parallel()
		_, ok := cfg.Key(parley.ProviderHFace)
		assert.False(t, ok)
	})

	t.Run("puter never needs one", func(t *testing.T) {
		t.Parallel()
		_, ok := cfg.Key(parley.ProviderPuter)
		assert.True(t, ok)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		_, ok := cfg.Key(parley.ProviderID("claude"))
		assert.False(t, ok)
	})
}
