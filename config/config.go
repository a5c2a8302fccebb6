// Package config loads the application configuration from
// ~/.parley/config.toml with environment variable overrides for API
// credentials. Flags (handled in cmd) take precedence over both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/parleychat/parley"
)

// Env var names for API credentials.
const (
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvOpenRouterKey = "OPENROUTER_API_KEY"
	EnvHFToken       = "HF_TOKEN"
)

// placeholderMarker flags a credential the user never filled in. A key
// containing it counts as absent, which drives the startup fallback.
const placeholderMarker = "PLACE_YOUR_KEY"

// Config is the on-disk configuration.
type Config struct {
	Provider string         `toml:"provider"` // preferred provider id
	Model    string         `toml:"model"`    // provider-specific model id
	Theme    string         `toml:"theme"`
	Keys     KeysConfig     `toml:"keys"`
	Backends BackendsConfig `toml:"backends"`
}

// KeysConfig holds API credentials. Environment variables override the
// file so secrets can stay out of it.
type KeysConfig struct {
	Gemini     string `toml:"gemini"`
	OpenRouter string `toml:"openrouter"`
	HFace      string `toml:"hface"`
}

// BackendsConfig holds per-backend endpoint overrides, mostly useful for
// self-hosted gateways.
type BackendsConfig struct {
	OpenRouterURL string `toml:"openrouter_url"`
	HFaceURL      string `toml:"hface_url"`
	PuterURL      string `toml:"puter_url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: string(parley.ProviderGemini),
		Theme:    "dark",
	}
}

// Path returns the default config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".parley", "config.toml")
}

// DataDir returns the default storage directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".parley")
}

// Load reads the config file at path, applying defaults and env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Built-in defaults.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvGeminiKey); v != "" {
		cfg.Keys.Gemini = v
	}
	if v := os.Getenv(EnvOpenRouterKey); v != "" {
		cfg.Keys.OpenRouter = v
	}
	if v := os.Getenv(EnvHFToken); v != "" {
		cfg.Keys.HFace = v
	}
}

// Key returns the credential for the given provider. Puter needs none
// and always reports ok.
func (c Config) Key(id parley.ProviderID) (key string, ok bool) {
	switch id {
	case parley.ProviderGemini:
		key = c.Keys.Gemini
	case parley.ProviderOpenRouter:
		key = c.Keys.OpenRouter
	case parley.ProviderHFace:
		key = c.Keys.HFace
	case parley.ProviderPuter:
		return "", true
	default:
		return "", false
	}
	if key == "" || strings.Contains(key, placeholderMarker) {
		return "", false
	}
	return key, true
}
