package timber

import (
	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/core"
)

// Shaker is the screen shake that follows a chop. It is purely
// cosmetic and never reads or writes game state.
type Shaker struct {
	cfg       config.ShakeConfig
	rng       Rand
	intensity float64
}

// NewShaker creates a resting shaker.
func NewShaker(cfg config.ShakeConfig, rng Rand) *Shaker {
	return &Shaker{cfg: cfg, rng: rng}
}

// Trigger restarts the shake at the given amplitude in scene units.
func (s *Shaker) Trigger(intensity float64) {
	s.intensity = intensity
}

// Observe is an Observer that kicks the shake on every chop.
func (s *Shaker) Observe(ev Event) {
	if _, ok := ev.(Chopped); ok {
		s.Trigger(s.cfg.Intensity)
	}
}

// Intensity returns the current amplitude.
func (s *Shaker) Intensity() float64 {
	return s.intensity
}

// Step returns this frame's offset and decays the amplitude.
// Once the amplitude drops to the threshold the shake stops.
func (s *Shaker) Step() core.PointF {
	if s.intensity <= s.cfg.Threshold {
		s.intensity = 0
		return core.PointF{}
	}
	off := core.PointF{
		X: (s.rng.Float64() - 0.5) * s.intensity,
		Y: (s.rng.Float64() - 0.5) * s.intensity,
	}
	s.intensity *= s.cfg.Decay
	return off
}
