package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Loader.SkipSkins {
		t.Error("expected skip_skins to be false by default")
	}
	if cfg.Loader.SkipAnimations {
		t.Error("expected skip_animations to be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "gltftool.yaml")

	yamlContent := `
loader:
  skip_skins: true
  skip_animations: true

logging:
  level: "debug"
  log_file: "gltftool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Loader.SkipSkins {
		t.Error("expected skip_skins to be true")
	}
	if !cfg.Loader.SkipAnimations {
		t.Error("expected skip_animations to be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "gltftool.log" {
		t.Errorf("expected log file 'gltftool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
loader:
  skip_skins: not a bool
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load("/nonexistent/path/gltftool.yaml"); err == nil {
		t.Error("expected error loading missing explicit file, got nil")
	}
}

func TestLoadImplicitMissing(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(t.TempDir())

	// No gltftool.yaml present: defaults, no error.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults when no config exists, got error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Logging.Level)
	}
}
