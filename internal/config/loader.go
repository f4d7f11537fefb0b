package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadTimber loads the timber configuration.
// Search order: customPath -> ~/.timber/configs/timber.yaml -> ./configs/timber.yaml -> embedded default
//
// Files are decoded on top of the defaults, so a partial file only
// overrides the keys it names.
func LoadTimber(customPath string) (TimberConfig, error) {
	cfg := DefaultTimberConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	// Try user config directory
	if userCfgPath := userConfigPath("timber.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil && cfg.Validate() == nil {
				return cfg, nil
			}
			cfg = DefaultTimberConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "timber.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil && cfg.Validate() == nil {
			return cfg, nil
		}
		cfg = DefaultTimberConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultTimberYAML, &cfg); err != nil {
		return DefaultTimberConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Validate rejects configurations the game cannot run with.
func (c TimberConfig) Validate() error {
	switch {
	case c.Tree.VisibleSegments < 1:
		return fmt.Errorf("config: tree.visible_segments must be positive, got %d", c.Tree.VisibleSegments)
	case c.Obstacles.SafeSegments < 0 || c.Obstacles.SafeSegments > c.Tree.VisibleSegments:
		return fmt.Errorf("config: obstacles.safe_segments must be within [0, %d], got %d",
			c.Tree.VisibleSegments, c.Obstacles.SafeSegments)
	case c.Obstacles.MaxChance < 0 || c.Obstacles.MaxChance > 1:
		return fmt.Errorf("config: obstacles.max_chance must be within [0, 1], got %g", c.Obstacles.MaxChance)
	case c.TimeTrial.TargetBlocks < 1:
		return fmt.Errorf("config: time_trial.target_blocks must be positive, got %d", c.TimeTrial.TargetBlocks)
	case c.Gameplay.MaxFrameMs <= 0:
		return fmt.Errorf("config: gameplay.max_frame_ms must be positive, got %g", c.Gameplay.MaxFrameMs)
	case c.Timer.Initial <= 0 || c.Timer.Initial > 1:
		return fmt.Errorf("config: timer.initial must be within (0, 1], got %g", c.Timer.Initial)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".timber", "configs", filename)
}

// GetEnv returns the value of an environment variable, or fallback when
// it is unset or empty.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// ApplyTimberPreset modifies the config based on a difficulty preset.
func ApplyTimberPreset(cfg *TimberConfig, preset DifficultyPreset) {
	cfg.Difficulty.Enabled = !IsFixedPreset(preset)

	// Adjust tuning based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Timer.DecayRate = 0.12
		cfg.Timer.MinRefill = 0.04
		cfg.Obstacles.MaxChance = 0.6
	case DifficultyHard:
		cfg.Timer.DecayRate = 0.2
		cfg.Timer.MinRefill = 0.02
		cfg.Obstacles.BaseChance = 0.45
		cfg.Obstacles.MaxChance = 0.85
	}
}
