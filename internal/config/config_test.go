package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config should not fail: %v", err)
	}
	if cfg.Quiz.Rate != nil || cfg.Speech.Command != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[quiz]
rate = 0.8
auto-play = false
difficulty = "1-100000"

[speech]
command = "say -v Kyoko {text}"

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Quiz.Rate == nil || *cfg.Quiz.Rate != 0.8 {
		t.Fatalf("unexpected rate: %v", cfg.Quiz.Rate)
	}
	if cfg.Quiz.AutoPlay == nil || *cfg.Quiz.AutoPlay {
		t.Fatalf("unexpected auto-play: %v", cfg.Quiz.AutoPlay)
	}
	if cfg.Quiz.Difficulty == nil || *cfg.Quiz.Difficulty != "1-100000" {
		t.Fatalf("unexpected difficulty: %v", cfg.Quiz.Difficulty)
	}
	if cfg.Quiz.DarkMode != nil {
		t.Fatalf("unset dark-mode should stay nil")
	}
	if cfg.Speech.Command == nil || *cfg.Speech.Command != "say -v Kyoko {text}" {
		t.Fatalf("unexpected speech command: %v", cfg.Speech.Command)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[quiz\nrate = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "kazu", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "kazu", "kazu.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogDir(); got != filepath.Join("/state", "kazu") {
		t.Fatalf("unexpected log dir %q", got)
	}
}
