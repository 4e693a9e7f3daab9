package main

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/kazu/internal/config"
	"github.com/verte-zerg/kazu/internal/model"
)

func TestReadCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"read", "0", "300", "1,000", "8000"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "0\tzero\n300\tsanbyaku\n1000\tsen\n8000\thassen\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestReadCommandRejectsOutOfDomain(t *testing.T) {
	for _, arg := range []string{"-1", "100000000", "abc"} {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"read", arg})
		if err := cmd.Execute(); err == nil {
			t.Fatalf("expected error for %q", arg)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, "=") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	var cfg config.FileConfig
	if _, err := toml.Decode(strings.Join(lines, "\n"), &cfg); err != nil {
		t.Fatalf("decode template: %v", err)
	}
	if cfg.Quiz.Rate == nil || *cfg.Quiz.Rate != 1.0 {
		t.Fatalf("unexpected rate: %v", cfg.Quiz.Rate)
	}
	if cfg.Quiz.Difficulty == nil || *cfg.Quiz.Difficulty != "1-1000" {
		t.Fatalf("unexpected difficulty: %v", cfg.Quiz.Difficulty)
	}
	if cfg.Quiz.WeakWindow == nil || *cfg.Quiz.WeakWindow != defaultWeakWindow {
		t.Fatalf("unexpected weak window: %v", cfg.Quiz.WeakWindow)
	}
	if cfg.Speech.Command == nil || *cfg.Speech.Command == "" {
		t.Fatalf("expected speech command")
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--rate", "1.5"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	rate, difficulty := 0.5, "10-99"
	applyFloatConfig(cmd, "rate", &practiceRate, &rate)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, &difficulty)
	if practiceRate != 1.5 {
		t.Fatalf("explicit flag should win, got %v", practiceRate)
	}
	if practiceDifficulty != "10-99" {
		t.Fatalf("config should apply to unset flag, got %q", practiceDifficulty)
	}

	settings, err := practiceSettings()
	if err != nil {
		t.Fatalf("practice settings: %v", err)
	}
	patch, ok := changedSettings(cmd, settings)
	if !ok {
		t.Fatalf("expected a patch for --rate")
	}
	if patch.Rate == nil || *patch.Rate != 1.5 {
		t.Fatalf("unexpected rate patch: %v", patch.Rate)
	}
	if patch.Difficulty != nil || patch.AutoPlay != nil || patch.DarkMode != nil {
		t.Fatalf("only changed flags belong in the patch: %+v", patch)
	}
	if settings.Difficulty != (model.Range{Min: 10, Max: 99}) {
		t.Fatalf("unexpected difficulty: %+v", settings.Difficulty)
	}
}

func TestPracticeSettingsRejectsInvalid(t *testing.T) {
	newRootCmd()
	practiceDifficulty = "50-10"
	if _, err := practiceSettings(); err == nil {
		t.Fatalf("expected reversed range to fail")
	}
	practiceDifficulty = "1-1000"
	practiceRate = 3
	if _, err := practiceSettings(); err == nil {
		t.Fatalf("expected rate out of bounds to fail")
	}
	practiceRate = math.NaN()
	if _, err := practiceSettings(); err == nil {
		t.Fatalf("expected NaN rate to fail")
	}
	practiceRate = 1
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "maybe\n": false}
	for input, want := range cases {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(input), &out, "sure? ")
		if err != nil {
			t.Fatalf("confirm(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("confirm(%q) = %v, want %v", input, got, want)
		}
		if out.String() != "sure? " {
			t.Fatalf("unexpected prompt %q", out.String())
		}
	}
}
