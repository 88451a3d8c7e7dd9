package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Decimate.Algorithm != "fast-quadric" {
		t.Errorf("expected algorithm 'fast-quadric', got %s", cfg.Decimate.Algorithm)
	}
	if cfg.Decimate.TargetRatio != 0.5 {
		t.Errorf("expected target ratio 0.5, got %f", cfg.Decimate.TargetRatio)
	}
	if cfg.Decimate.Aggressiveness != 7.0 {
		t.Errorf("expected aggressiveness 7.0, got %f", cfg.Decimate.Aggressiveness)
	}
	if cfg.Decimate.Lossless {
		t.Error("expected lossless to be false by default")
	}
	if !cfg.Decimate.SmartLink {
		t.Error("expected smart_link to be true by default")
	}
	if cfg.Decimate.PreserveBorders {
		t.Error("expected preserve_borders to be false by default")
	}
	if cfg.Decimate.MaxVertexCount != 0 {
		t.Errorf("expected max_vertex_count 0, got %d", cfg.Decimate.MaxVertexCount)
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
	configPath := filepath.Join(tmpDir, "meshtool.yaml")

	yamlContent := `
decimate:
  algorithm: fast-quadric
  target_ratio: 0.25
  lossless: true
  aggressiveness: 3.5
  preserve_borders: true
  smart_link: false
  max_vertex_count: 1000

logging:
  level: "debug"
  log_file: "meshtool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Decimate.TargetRatio != 0.25 {
		t.Errorf("expected target ratio 0.25, got %f", cfg.Decimate.TargetRatio)
	}
	if !cfg.Decimate.Lossless {
		t.Error("expected lossless to be true")
	}
	if cfg.Decimate.Aggressiveness != 3.5 {
		t.Errorf("expected aggressiveness 3.5, got %f", cfg.Decimate.Aggressiveness)
	}
	if !cfg.Decimate.PreserveBorders {
		t.Error("expected preserve_borders to be true")
	}
	if cfg.Decimate.SmartLink {
		t.Error("expected smart_link to be false")
	}
	if cfg.Decimate.MaxVertexCount != 1000 {
		t.Errorf("expected max_vertex_count 1000, got %d", cfg.Decimate.MaxVertexCount)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshtool.log" {
		t.Errorf("expected log file 'meshtool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
decimate:
  target_ratio: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/meshtool.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Actual path depends on OS; just verify it is a non-empty absolute path.
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestBindFlagsOverride(t *testing.T) {
	cfg := Default()
	cfg.Decimate.TargetRatio = 0.8

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	BindFlags(fs, cfg)

	if err := fs.Parse([]string{"-target-ratio", "0.1", "-preserve-borders", "-log-level", "warn"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	if cfg.Decimate.TargetRatio != 0.1 {
		t.Errorf("expected target ratio 0.1 from flag, got %f", cfg.Decimate.TargetRatio)
	}
	if !cfg.Decimate.PreserveBorders {
		t.Error("expected preserve_borders to be true from flag")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level 'warn' from flag, got %s", cfg.Logging.Level)
	}
	// Unset flags keep the loaded values.
	if cfg.Decimate.Aggressiveness != 7.0 {
		t.Errorf("expected aggressiveness 7.0 untouched, got %f", cfg.Decimate.Aggressiveness)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "meshtool.yaml")

	cfg := Default()
	cfg.Decimate.TargetRatio = 0.33
	cfg.Logging.Level = "debug"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if loaded.Decimate.TargetRatio != 0.33 {
		t.Errorf("expected target ratio 0.33 after round trip, got %f", loaded.Decimate.TargetRatio)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug' after round trip, got %s", loaded.Logging.Level)
	}
}
