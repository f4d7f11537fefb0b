// Package config provides YAML-based game configuration loading and
// difficulty management for timber.
package config

// TimberConfig contains all tuning for the timber game modes.
type TimberConfig struct {
	Timer      TimerConfig      `yaml:"timer"`
	Obstacles  ObstacleConfig   `yaml:"obstacles"`
	Tree       TreeConfig       `yaml:"tree"`
	TimeTrial  TimeTrialConfig  `yaml:"time_trial"`
	Gameplay   GameplayConfig   `yaml:"gameplay"`
	Shake      ShakeConfig      `yaml:"shake"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// TimerConfig defines the survival countdown.
// All amounts are fractions of a full bar.
type TimerConfig struct {
	Initial       float64 `yaml:"initial"`
	DecayRate     float64 `yaml:"decay_rate"`     // Per second
	DecayIncrease float64 `yaml:"decay_increase"` // Added to the decay multiplier per chop
	RefillBase    float64 `yaml:"refill_base"`
	RefillDecay   float64 `yaml:"refill_decay"` // Subtracted from the refill per chop
	MinRefill     float64 `yaml:"min_refill"`
}

// ObstacleConfig defines branch generation.
type ObstacleConfig struct {
	BaseChance      float64 `yaml:"base_chance"`
	ChanceIncrement float64 `yaml:"chance_increment"` // Per chop
	MaxChance       float64 `yaml:"max_chance"`
	SafeSegments    int     `yaml:"safe_segments"`
}

// TreeConfig defines the visible trunk.
type TreeConfig struct {
	VisibleSegments int `yaml:"visible_segments"`
}

// TimeTrialConfig defines the time-trial quota.
type TimeTrialConfig struct {
	TargetBlocks int `yaml:"target_blocks"`
}

// GameplayConfig defines frame pacing and screen transitions.
type GameplayConfig struct {
	GameOverDelayMs float64 `yaml:"game_over_delay_ms"`
	MaxFrameMs      float64 `yaml:"max_frame_ms"`
}

// ShakeConfig defines the chop screen shake.
type ShakeConfig struct {
	Intensity float64 `yaml:"intensity"`
	Decay     float64 `yaml:"decay"`
	Threshold float64 `yaml:"threshold"`
}

// DifficultyConfig toggles the per-chop difficulty ramp.
type DifficultyConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a flag value into a preset.
// Returns false for unknown names.
func ParsePreset(s string) (DifficultyPreset, bool) {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, true
	default:
		return "", false
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
