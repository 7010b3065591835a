// Package config loads the engine configuration from an optional YAML
// file, with environment variables supplying the secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	// DataDir holds the local SQLite databases (auth store).
	DataDir string `yaml:"data_dir"`
	// LogMode selects the logger encoder: dev or prod.
	LogMode string `yaml:"log_mode"`

	Gemini Gemini `yaml:"gemini"`
}

// Gemini configures the generative model client used for both the
// evidence analyzer and the conversational agent.
type Gemini struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// APIKeyEnv names the environment variable carrying the key; the
	// key itself never lives in the config file.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir: "./data",
		LogMode: "dev",
		Gemini: Gemini{
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			Model:     "gemini-3-pro-preview",
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// Load reads the config file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// APIKey resolves the Gemini API key from the environment.
func (g Gemini) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}
