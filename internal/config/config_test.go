package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "./data" || cfg.LogMode != "dev" {
		t.Errorf("Defaults = %+v", cfg)
	}
	if cfg.Gemini.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("Gemini defaults = %+v", cfg.Gemini)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /var/lib/casegraph
gemini:
  model: gemini-test
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/var/lib/casegraph" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Gemini.Model != "gemini-test" {
		t.Errorf("Model = %q", cfg.Gemini.Model)
	}
	// Untouched keys keep their defaults.
	if cfg.LogMode != "dev" || cfg.Gemini.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("Defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("CASEGRAPH_TEST_KEY", "secret")
	g := Gemini{APIKeyEnv: "CASEGRAPH_TEST_KEY"}
	if g.APIKey() != "secret" {
		t.Errorf("APIKey = %q", g.APIKey())
	}
}
