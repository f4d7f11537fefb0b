// Package timber implements the lumberjack arcade game: the player
// chops a rising trunk from the left or right while dodging branches.
//
// Machine is the whole simulation. It is driven by Frame once per
// rendered frame and by the chop/any-key actions, and it owns every
// piece of game state. It is not safe for concurrent use; the platform
// calls it from a single goroutine.
package timber

import (
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/registry"
)

// Screen is the single authoritative UI phase.
type Screen int

const (
	ScreenTitle Screen = iota
	ScreenPlaying
	ScreenGameOver
	ScreenLeaderboard
)

func (s Screen) String() string {
	switch s {
	case ScreenTitle:
		return "title"
	case ScreenPlaying:
		return "playing"
	case ScreenGameOver:
		return "game-over"
	case ScreenLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// DeathReason records why a survival run ended.
type DeathReason int

const (
	DeathNone DeathReason = iota
	DeathCollision
	DeathTimeout
)

func (r DeathReason) String() string {
	switch r {
	case DeathCollision:
		return "collision"
	case DeathTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// State is a snapshot of one game. Segments[0] is the bottom segment,
// the one the next chop hits.
type State struct {
	Mode         Mode
	Screen       Screen
	PlayerSide   Side
	Segments     []TreeSegment
	IsPlayerDead bool
	LastChopTime float64 // Machine clock, ms

	// Survival
	Score          int
	TimerValue     float64
	TimerDecayRate float64
	ChopCount      int
	DeathReason    DeathReason

	// Time trial
	BlocksChopped int
	TargetBlocks  int
	Progress      float64
	ElapsedTime   float64 // ms
	GameWon       bool
}

// Finished reports whether the run has ended, even if the game-over
// screen has not appeared yet.
func (s State) Finished() bool {
	return s.IsPlayerDead || s.GameWon
}

// Options configures a new Machine. The zero value is usable.
type Options struct {
	Config   config.TimberConfig // Zero value means defaults
	Rand     Rand                // Nil means time-seeded
	Sounds   SoundPlayer         // Nil means silent
	Observer Observer            // Optional first observer
	Best     float64
}

// Modes is the registry of playable modes.
var Modes = registry.New[Options, *Machine]()

func init() {
	Modes.Register(string(ModeSurvival), func(o Options) *Machine {
		return NewMachine(ModeSurvival, o)
	})
	Modes.Register(string(ModeTimeTrial), func(o Options) *Machine {
		return NewMachine(ModeTimeTrial, o)
	})
}

// pendingGameOver is the one-shot transition scheduled by a death or a
// win. It cannot be cancelled.
type pendingGameOver struct {
	at    float64
	event GameOver
}

// Machine is the game state machine.
type Machine struct {
	mode       Mode
	policy     modePolicy
	cfg        config.TimberConfig
	difficulty *config.DifficultyManager
	gen        *Generator
	sounds     SoundPlayer
	observers  []Observer

	state   State
	best    float64
	clock   float64
	pending *pendingGameOver
}

// NewMachine creates a machine on the title screen.
func NewMachine(mode Mode, opts Options) *Machine {
	if mode != ModeTimeTrial {
		mode = ModeSurvival
	}
	cfg := opts.Config
	if cfg.Tree.VisibleSegments == 0 {
		cfg = config.DefaultTimberConfig()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sounds := opts.Sounds
	if sounds == nil {
		sounds = noSound{}
	}

	m := &Machine{
		mode:       mode,
		policy:     policyFor(mode),
		cfg:        cfg,
		difficulty: config.NewDifficultyManager(cfg),
		gen:        NewGenerator(rng, cfg),
		sounds:     sounds,
		best:       opts.Best,
	}
	if opts.Observer != nil {
		m.observers = append(m.observers, opts.Observer)
	}
	m.state = m.initialState()
	return m
}

// ID returns the registry identifier of the mode.
func (m *Machine) ID() string {
	return string(m.mode)
}

// Title returns the display name of the mode.
func (m *Machine) Title() string {
	return m.mode.Title()
}

// Mode returns the rule set.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Config returns the tuning the machine was built with.
func (m *Machine) Config() config.TimberConfig {
	return m.cfg
}

// Subscribe adds an observer.
func (m *Machine) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	s := m.state
	s.Segments = append([]TreeSegment(nil), m.state.Segments...)
	return s
}

// Best returns the best metric known to the machine.
func (m *Machine) Best() float64 {
	return m.best
}

// SetBest injects the persisted best metric.
func (m *Machine) SetBest(v float64) {
	m.best = v
}

// Clock returns the machine time in milliseconds.
func (m *Machine) Clock() float64 {
	return m.clock
}

// GameOverPending reports whether a game-over transition is scheduled.
func (m *Machine) GameOverPending() bool {
	return m.pending != nil
}

func (m *Machine) initialState() State {
	return State{
		Mode:           m.mode,
		Screen:         ScreenTitle,
		PlayerSide:     SideLeft,
		Segments:       m.gen.Initial(m.cfg.Tree.VisibleSegments),
		TimerValue:     m.cfg.Timer.Initial,
		TimerDecayRate: m.cfg.Timer.DecayRate,
		TargetBlocks:   m.cfg.TimeTrial.TargetBlocks,
	}
}

func (m *Machine) emit(ev Event) {
	for _, o := range m.observers {
		o(ev)
	}
}

func (m *Machine) setScreen(s Screen) {
	m.state.Screen = s
	m.emit(ScreenChanged{Screen: s})
}

// StartGame begins a fresh game. It is ignored while a game is in
// progress, including the pause between a death and the game-over
// screen.
func (m *Machine) StartGame() {
	switch m.state.Screen {
	case ScreenTitle, ScreenGameOver, ScreenLeaderboard:
	default:
		return
	}

	m.state = m.initialState()
	m.setScreen(ScreenPlaying)
	for _, ev := range m.policy.resetEvents(&m.state) {
		m.emit(ev)
	}
}

// Frame advances the machine clock by the wall time since the last
// frame, fires a due game-over transition, then updates the game.
// Update sees at most one frame budget so a stalled terminal does not
// drain the timer in one step.
func (m *Machine) Frame(deltaMs float64) {
	if deltaMs < 0 {
		deltaMs = 0
	}
	m.clock += deltaMs

	if m.pending != nil && m.clock >= m.pending.at {
		ev := m.pending.event
		m.pending = nil
		m.setScreen(ScreenGameOver)
		m.emit(ev)
	}

	if m.state.Screen == ScreenPlaying && !m.state.Finished() {
		m.Update(math.Min(deltaMs, m.cfg.Gameplay.MaxFrameMs))
	}
}

// Update advances the game by deltaMs milliseconds.
func (m *Machine) Update(deltaMs float64) {
	if m.state.Screen != ScreenPlaying || m.state.Finished() || deltaMs <= 0 {
		return
	}
	m.policy.update(m, deltaMs)
}

// Chop swings the axe from side.
func (m *Machine) Chop(side Side) {
	if m.state.Screen != ScreenPlaying || m.state.Finished() {
		return
	}
	s := &m.state
	s.PlayerSide = side

	if s.Segments[0].Obstacle == side.Obstacle() {
		m.triggerDeath(DeathCollision)
		return
	}

	counter := m.policy.reward(m)
	s.LastChopTime = m.clock

	next := m.gen.Next(s.Segments[1:], counter)
	copy(s.Segments, s.Segments[1:])
	s.Segments[len(s.Segments)-1] = next

	m.sounds.Play(audio.SoundChop)
	m.emit(Chopped{Side: side})
	m.policy.afterChop(m)
}

// HandleChop is the chop action from the input layer. On the title
// screen it starts a game and chops in one go.
func (m *Machine) HandleChop(side Side) {
	switch m.state.Screen {
	case ScreenTitle:
		m.StartGame()
		m.Chop(side)
	case ScreenPlaying:
		m.Chop(side)
	}
}

// HandleAnyKey starts a game from the title screen, and restarts a time
// trial from its game-over screen.
func (m *Machine) HandleAnyKey() {
	switch {
	case m.state.Screen == ScreenTitle:
		m.StartGame()
	case m.state.Screen == ScreenGameOver && m.mode == ModeTimeTrial:
		m.StartGame()
	}
}

// HandleAction dispatches a logical input action.
func (m *Machine) HandleAction(a core.Action) {
	switch a {
	case core.ActionChopLeft:
		m.HandleChop(SideLeft)
	case core.ActionChopRight:
		m.HandleChop(SideRight)
	case core.ActionAnyKey:
		m.HandleAnyKey()
	}
}

// ShowLeaderboard moves from the game-over screen to the leaderboard.
func (m *Machine) ShowLeaderboard() {
	if m.state.Screen == ScreenGameOver {
		m.setScreen(ScreenLeaderboard)
	}
}

// BackToTitle returns to the title screen with a fresh tree.
func (m *Machine) BackToTitle() {
	switch m.state.Screen {
	case ScreenGameOver, ScreenLeaderboard:
		m.state = m.initialState()
		m.setScreen(ScreenTitle)
	}
}

func (m *Machine) triggerDeath(reason DeathReason) {
	if m.state.Finished() {
		return
	}
	m.state.IsPlayerDead = true
	m.state.DeathReason = reason
	m.sounds.Play(audio.SoundDeath)
	m.finish()
}

func (m *Machine) triggerVictory() {
	if m.state.Finished() {
		return
	}
	m.state.GameWon = true
	m.sounds.Play(audio.SoundVictory)
	m.finish()
}

// finish settles the best metric and schedules the game-over screen.
func (m *Machine) finish() {
	s := &m.state
	metric := m.policy.metric(s)
	newBest := m.policy.isNewBest(s, m.best)
	if newBest {
		m.best = metric
		m.sounds.Play(audio.SoundHighscore)
	}

	m.pending = &pendingGameOver{
		at: m.clock + m.cfg.Gameplay.GameOverDelayMs,
		event: GameOver{
			Mode:    m.mode,
			Metric:  metric,
			NewBest: newBest,
			Reason:  s.DeathReason,
			Won:     s.GameWon,
		},
	}
}
