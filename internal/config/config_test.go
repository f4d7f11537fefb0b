package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	var fromYAML TimberConfig
	if err := yaml.Unmarshal(GetDefaultYAML(), &fromYAML); err != nil {
		t.Fatalf("embedded defaults do not parse: %v", err)
	}
	if fromYAML != DefaultTimberConfig() {
		t.Errorf("embedded defaults = %+v\nhardcoded = %+v", fromYAML, DefaultTimberConfig())
	}
	if err := fromYAML.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTimberCustomPathPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timber.yaml")
	data := []byte("time_trial:\n  target_blocks: 25\ntimer:\n  decay_rate: 0.3\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadTimber(path)
	if err != nil {
		t.Fatalf("LoadTimber() error = %v", err)
	}
	if cfg.TimeTrial.TargetBlocks != 25 {
		t.Errorf("TargetBlocks = %d, expected 25", cfg.TimeTrial.TargetBlocks)
	}
	if cfg.Timer.DecayRate != 0.3 {
		t.Errorf("DecayRate = %g, expected 0.3", cfg.Timer.DecayRate)
	}
	// Untouched keys keep their defaults
	if cfg.Tree.VisibleSegments != 10 {
		t.Errorf("VisibleSegments = %d, expected default 10", cfg.Tree.VisibleSegments)
	}
}

func TestLoadTimberCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadTimber(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing custom config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("timer: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTimber(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("tree:\n  visible_segments: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTimber(invalid); err == nil {
		t.Error("expected validation error for zero visible segments")
	}
}

func TestParsePreset(t *testing.T) {
	for _, name := range []string{"easy", "normal", "hard", "fixed"} {
		if p, ok := ParsePreset(name); !ok || string(p) != name {
			t.Errorf("ParsePreset(%q) = %q, %v", name, p, ok)
		}
	}
	if _, ok := ParsePreset("nightmare"); ok {
		t.Error("unknown preset should be rejected")
	}
}

func TestApplyTimberPreset(t *testing.T) {
	cfg := DefaultTimberConfig()
	ApplyTimberPreset(&cfg, DifficultyFixed)
	if cfg.Difficulty.Enabled {
		t.Error("fixed preset should disable progression")
	}

	cfg = DefaultTimberConfig()
	ApplyTimberPreset(&cfg, DifficultyNormal)
	if cfg != DefaultTimberConfig() {
		t.Error("normal preset should leave defaults unchanged")
	}

	easy, hard := DefaultTimberConfig(), DefaultTimberConfig()
	ApplyTimberPreset(&easy, DifficultyEasy)
	ApplyTimberPreset(&hard, DifficultyHard)
	if easy.Timer.DecayRate >= hard.Timer.DecayRate {
		t.Errorf("easy decay %g should be below hard decay %g", easy.Timer.DecayRate, hard.Timer.DecayRate)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TIMBER_TEST_VALUE", "set")
	if got := GetEnv("TIMBER_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv() = %q, expected set", got)
	}
	t.Setenv("TIMBER_TEST_VALUE", "")
	if got := GetEnv("TIMBER_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() with empty value = %q, expected fallback", got)
	}
}

func TestObstacleChanceRamp(t *testing.T) {
	d := NewDifficultyManager(DefaultTimberConfig())

	tests := []struct {
		counter  int
		expected float64
	}{
		{0, 0.35},
		{10, 0.38},
		{100, 0.65},
		{133, 0.749},
		{134, 0.75},
		{1000, 0.75},
	}
	for _, tc := range tests {
		if got := d.ObstacleChance(tc.counter); math.Abs(got-tc.expected) > 1e-9 {
			t.Errorf("ObstacleChance(%d) = %g, expected %g", tc.counter, got, tc.expected)
		}
	}

	prev := 0.0
	for c := 0; c < 500; c++ {
		got := d.ObstacleChance(c)
		if got < prev {
			t.Fatalf("ObstacleChance not monotonic at %d: %g < %g", c, got, prev)
		}
		if got > 0.75 {
			t.Fatalf("ObstacleChance(%d) = %g exceeds ceiling", c, got)
		}
		prev = got
	}
}

func TestRefillDiminishes(t *testing.T) {
	d := NewDifficultyManager(DefaultTimberConfig())

	if got := d.Refill(0); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("Refill(0) = %g, expected 0.1", got)
	}
	if got := d.Refill(100); math.Abs(got-0.05) > 1e-9 {
		t.Errorf("Refill(100) = %g, expected 0.05", got)
	}
	if got := d.Refill(1000); got != 0.03 {
		t.Errorf("Refill(1000) = %g, expected floor 0.03", got)
	}
}

func TestDisabledDifficultyIsFlat(t *testing.T) {
	cfg := DefaultTimberConfig()
	cfg.Difficulty.Enabled = false
	d := NewDifficultyManager(cfg)

	if d.ObstacleChance(500) != d.ObstacleChance(0) {
		t.Error("chance should not ramp when disabled")
	}
	if d.DecayMultiplier(500) != 1 {
		t.Error("decay should not accelerate when disabled")
	}
	if d.Refill(500) != d.Refill(0) {
		t.Error("refill should not diminish when disabled")
	}
}
