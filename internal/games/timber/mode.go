package timber

import (
	"math"

	"github.com/vovakirdan/timber/internal/audio"
)

// Mode selects the rule set.
type Mode string

const (
	ModeSurvival  Mode = "survival"
	ModeTimeTrial Mode = "time-trial"
)

// Title returns the display name of the mode.
func (m Mode) Title() string {
	switch m {
	case ModeTimeTrial:
		return "Time Trial"
	default:
		return "Survival"
	}
}

// LowerIsBetter reports whether smaller metrics rank higher.
func (m Mode) LowerIsBetter() bool {
	return m == ModeTimeTrial
}

// modePolicy holds everything that differs between the modes.
type modePolicy interface {
	// resetEvents returns the HUD events announcing a fresh game.
	resetEvents(s *State) []Event
	// update advances mode clocks by dt milliseconds.
	update(m *Machine, dt float64)
	// reward applies a successful chop and returns the difficulty counter
	// for the next segment.
	reward(m *Machine) int
	// afterChop emits progress and checks for a win.
	afterChop(m *Machine)
	metric(s *State) float64
	isNewBest(s *State, best float64) bool
}

func policyFor(mode Mode) modePolicy {
	if mode == ModeTimeTrial {
		return timeTrialPolicy{}
	}
	return survivalPolicy{}
}

type survivalPolicy struct{}

func (survivalPolicy) resetEvents(s *State) []Event {
	return []Event{ScoreChanged{Score: s.Score}, TimerChanged{Value: s.TimerValue}}
}

func (survivalPolicy) update(m *Machine, dt float64) {
	s := &m.state
	decay := s.TimerDecayRate * m.difficulty.DecayMultiplier(s.ChopCount) * (dt / 1000)
	s.TimerValue = math.Max(0, s.TimerValue-decay)
	m.emit(TimerChanged{Value: s.TimerValue})

	if s.TimerValue <= 0 {
		m.triggerDeath(DeathTimeout)
	}
}

func (survivalPolicy) reward(m *Machine) int {
	s := &m.state
	s.Score++
	s.ChopCount++
	refill := m.difficulty.Refill(s.ChopCount)
	s.TimerValue = clamp01(s.TimerValue + refill)
	return s.ChopCount
}

func (survivalPolicy) afterChop(m *Machine) {
	m.emit(ScoreChanged{Score: m.state.Score})
	m.emit(TimerChanged{Value: m.state.TimerValue})
}

func (survivalPolicy) metric(s *State) float64 {
	return float64(s.Score)
}

func (survivalPolicy) isNewBest(s *State, best float64) bool {
	return float64(s.Score) > best
}

type timeTrialPolicy struct{}

func (timeTrialPolicy) resetEvents(s *State) []Event {
	return []Event{
		ProgressChanged{Blocks: s.BlocksChopped, Target: s.TargetBlocks, Progress: s.Progress},
		TimeChanged{ElapsedMs: s.ElapsedTime},
	}
}

func (timeTrialPolicy) update(m *Machine, dt float64) {
	m.state.ElapsedTime += dt
	m.emit(TimeChanged{ElapsedMs: m.state.ElapsedTime})
}

func (timeTrialPolicy) reward(m *Machine) int {
	s := &m.state
	s.BlocksChopped++
	s.Progress = clamp01(float64(s.BlocksChopped) / float64(s.TargetBlocks))
	return s.BlocksChopped
}

func (timeTrialPolicy) afterChop(m *Machine) {
	s := &m.state
	m.emit(ProgressChanged{Blocks: s.BlocksChopped, Target: s.TargetBlocks, Progress: s.Progress})
	if s.BlocksChopped >= s.TargetBlocks {
		m.triggerVictory()
	}
}

func (timeTrialPolicy) metric(s *State) float64 {
	return s.ElapsedTime
}

// Only a finished run can set a time. Dying on a branch never does.
func (timeTrialPolicy) isNewBest(s *State, best float64) bool {
	return s.GameWon && (best == 0 || s.ElapsedTime < best)
}

// SoundPlayer is the part of audio.Player the machine needs.
type SoundPlayer interface {
	Play(s audio.Sound)
}

type noSound struct{}

func (noSound) Play(audio.Sound) {}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
