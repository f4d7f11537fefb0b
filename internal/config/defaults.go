package config

import (
	_ "embed"
)

//go:embed defaults/timber.yaml
var defaultTimberYAML []byte

// DefaultTimberConfig returns the hardcoded timber configuration.
// It mirrors defaults/timber.yaml and is used when the embedded file
// cannot be parsed.
func DefaultTimberConfig() TimberConfig {
	return TimberConfig{
		Timer: TimerConfig{
			Initial:       1.0,
			DecayRate:     0.15,
			DecayIncrease: 0.005,
			RefillBase:    0.1,
			RefillDecay:   0.0005,
			MinRefill:     0.03,
		},
		Obstacles: ObstacleConfig{
			BaseChance:      0.35,
			ChanceIncrement: 0.003,
			MaxChance:       0.75,
			SafeSegments:    3,
		},
		Tree: TreeConfig{
			VisibleSegments: 10,
		},
		TimeTrial: TimeTrialConfig{
			TargetBlocks: 100,
		},
		Gameplay: GameplayConfig{
			GameOverDelayMs: 500,
			MaxFrameMs:      33.33,
		},
		Shake: ShakeConfig{
			Intensity: 6,
			Decay:     0.85,
			Threshold: 0.5,
		},
		Difficulty: DifficultyConfig{
			Enabled: true,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultTimberYAML
}
