package config

import "math"

// DifficultyManager derives the per-chop tuning from the difficulty
// counter (chops in survival, blocks in time-trial).
type DifficultyManager struct {
	timer     TimerConfig
	obstacles ObstacleConfig
	enabled   bool
}

// NewDifficultyManager creates a new difficulty manager.
func NewDifficultyManager(cfg TimberConfig) *DifficultyManager {
	return &DifficultyManager{
		timer:     cfg.Timer,
		obstacles: cfg.Obstacles,
		enabled:   cfg.Difficulty.Enabled,
	}
}

// ObstacleChance returns the probability that a new segment carries a
// branch. The ramp is linear and capped at MaxChance.
func (d *DifficultyManager) ObstacleChance(counter int) float64 {
	if !d.enabled {
		counter = 0
	}
	chance := d.obstacles.BaseChance + float64(max(counter, 0))*d.obstacles.ChanceIncrement
	return clampF(chance, 0, d.obstacles.MaxChance)
}

// DecayMultiplier returns the factor applied to the base timer decay.
func (d *DifficultyManager) DecayMultiplier(chops int) float64 {
	if !d.enabled {
		return 1
	}
	return 1 + float64(max(chops, 0))*d.timer.DecayIncrease
}

// Refill returns how much of the timer bar a successful chop restores.
// Returns diminish with every chop but never drop below MinRefill.
func (d *DifficultyManager) Refill(chops int) float64 {
	if !d.enabled {
		chops = 0
	}
	return math.Max(d.timer.MinRefill, d.timer.RefillBase-float64(max(chops, 0))*d.timer.RefillDecay)
}

// clampF restricts a float64 to [min, max].
func clampF(val, min, max float64) float64 {
	return math.Max(min, math.Min(max, val))
}
