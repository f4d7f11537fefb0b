package tui

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
	"github.com/vovakirdan/timber/internal/profile"
)

// Options configures a game session.
type Options struct {
	Mode     timber.Mode
	Game     config.TimberConfig
	Runtime  core.RuntimeConfig
	Profile  *profile.Profile
	Board    *leaderboard.Client // Nil or unconfigured hides submission
	Audio    audio.Player        // Nil means silent
	Mute     bool                // Silence this session without saving it
	Logger   *log.Logger
	Renderer *lipgloss.Renderer // Nil means the default renderer
	Context  context.Context    // Cancels leaderboard requests

	// Embedded sessions return to the mode menu from the title screen
	// instead of quitting.
	Embedded bool
}

// Model is the Bubble Tea model for one game session. It is used by
// pointer because the machine reports events through a closure over it.
type Model struct {
	machine  *timber.Machine
	profile  *profile.Profile
	board    *leaderboard.Client
	sound    audio.Player
	logger   *log.Logger
	renderer *lipgloss.Renderer
	ctx      context.Context

	config core.RuntimeConfig
	screen *core.Screen
	shaker *timber.Shaker
	offset core.PointF
	input  *core.InputMapper
	keys   KeyMap
	help   help.Model
	name   textinput.Model
	table  table.Model

	loop     int64
	lastTick time.Time
	cmds     []tea.Cmd

	// Per game; gen increments on every start so late leaderboard
	// replies can tell they are stale.
	gen        int
	result     *timber.GameOver
	submitting bool
	submitted  bool
	rank       int
	entries    []leaderboard.Entry
	loading    bool

	embedded bool
	back     bool
	quitting bool
}

// submitDoneMsg reports a finished submission.
type submitDoneMsg struct {
	gen  int
	ok   bool
	rank int
}

// boardMsg carries a fetched leaderboard.
type boardMsg struct {
	gen     int
	entries []leaderboard.Entry
}

// NewModel creates a session on the title screen.
func NewModel(opts Options) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := opts.Runtime
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	prof := opts.Profile
	if prof == nil {
		prof = profile.New(profile.NewMemoryKV(), "local", logger)
	}
	sound := opts.Audio
	if sound == nil {
		sound = &audio.Silent{}
	}
	sound.SetMuted(prof.Muted() || opts.Mute)
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	mode := opts.Mode
	if mode == "" {
		mode = timber.ModeSurvival
	}

	machine, err := timber.Modes.Create(string(mode), timber.Options{
		Config: opts.Game,
		Rand:   rand.New(rand.NewSource(cfg.Seed)),
		Sounds: sound,
		Best:   prof.Best(mode),
	})
	if err != nil {
		return nil, err
	}

	name := textinput.New()
	name.Placeholder = leaderboard.AnonymousName
	name.CharLimit = leaderboard.MaxNameLength
	name.Width = leaderboard.MaxNameLength + 1
	name.Prompt = "Name: "

	m := &Model{
		machine:  machine,
		profile:  prof,
		board:    opts.Board,
		sound:    sound,
		logger:   logger.With("mode", string(mode)),
		renderer: opts.Renderer,
		ctx:      ctx,
		config:   cfg,
		screen:   core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-1, 0)),
		shaker:   timber.NewShaker(machine.Config().Shake, rand.New(rand.NewSource(cfg.Seed+1))),
		input:    core.NewInputMapper(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		name:     name,
		loop:     nextLoop(),
		embedded: opts.Embedded,
	}
	m.table = m.createTable()
	machine.Subscribe(m.observe)
	return m, nil
}

// Machine exposes the game for inspection.
func (m *Model) Machine() *timber.Machine {
	return m.machine
}

// Init starts the frame loop.
func (m *Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate, m.loop)
}

// BackToMenu reports whether the player left for the mode menu.
func (m *Model) BackToMenu() bool {
	return m.back
}

// IsQuitting reports whether the player quit.
func (m *Model) IsQuitting() bool {
	return m.quitting
}

// observe receives machine events. It runs inside Update, so it may
// queue commands for Update to return.
func (m *Model) observe(ev timber.Event) {
	m.shaker.Observe(ev)

	switch ev := ev.(type) {
	case timber.ScreenChanged:
		switch ev.Screen {
		case timber.ScreenPlaying:
			m.gen++
			m.result = nil
			m.submitting, m.submitted = false, false
			m.rank = 0
			m.setTyping(false)
		case timber.ScreenLeaderboard:
			m.setTyping(false)
			m.loading = true
			m.cmds = append(m.cmds, m.fetchCmd())
		case timber.ScreenTitle:
			m.setTyping(false)
		}
	case timber.GameOver:
		m.onGameOver(ev)
	}
}

func (m *Model) onGameOver(ev timber.GameOver) {
	m.result = &ev
	// A lost time trial has no finishing time
	if ev.Mode != timber.ModeTimeTrial || ev.Won {
		m.profile.SetBest(ev.Mode, ev.Metric)
	}
	m.profile.IncrementGamesPlayed()
	m.logger.Debug("game over", "metric", ev.Metric, "new_best", ev.NewBest,
		"reason", ev.Reason.String(), "won", ev.Won)

	if m.canSubmit() {
		m.name.SetValue(m.profile.LastDisplayName())
		m.name.CursorEnd()
		m.setTyping(true)
		m.cmds = append(m.cmds, textinput.Blink)
	}
}

// canSubmit reports whether the finished game may go on the board.
// Time-trial runs that were not completed are not ranked.
func (m *Model) canSubmit() bool {
	if !m.board.Configured() || m.result == nil || m.submitted || m.submitting {
		return false
	}
	return m.result.Mode != timber.ModeTimeTrial || m.result.Won
}

func (m *Model) setTyping(on bool) {
	m.input.TextFocus = on
	if on {
		m.name.Focus()
	} else {
		m.name.Blur()
	}
}

// drain returns and clears the queued commands.
func (m *Model) drain(extra ...tea.Cmd) tea.Cmd {
	cmds := append(m.cmds, extra...)
	m.cmds = nil
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-1, 0))
		m.help.Width = msg.Width
		m.table = m.createTable()
		m.updateTableRows()
		return m, nil

	case TickMsg:
		if msg.Loop != m.loop || m.back {
			return m, nil
		}
		return m.handleTick(msg.Time)

	case submitDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.submitting = false
		m.submitted = msg.ok
		m.rank = msg.rank
		m.machine.ShowLeaderboard()
		return m, m.drain()

	case boardMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.entries = msg.entries
		m.updateTableRows()
		return m, nil
	}

	if m.input.TextFocus {
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick advances the game by the wall time since the last tick.
func (m *Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.machine.Frame(frameDelta(m.lastTick, now, m.config.TickRate))
	m.lastTick = now
	m.offset = m.shaker.Step()
	return m, m.drain(tickCmd(m.config.TickRate, m.loop))
}

// handleKey processes keyboard input. Platform keys win over game
// actions; while the name field has focus it gets everything else.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	screen := m.machine.State().Screen
	if m.input.TextFocus {
		return m.handleNameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Mute):
		m.toggleMute()
		return m, nil
	}

	switch screen {
	case timber.ScreenGameOver:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.machine.BackToTitle()
			return m, m.drain()
		case key.Matches(msg, m.keys.Leaderboard) && m.board.Configured():
			m.machine.ShowLeaderboard()
			return m, m.drain()
		case key.Matches(msg, m.keys.PlayAgain):
			m.machine.StartGame()
			return m, m.drain()
		}
	case timber.ScreenLeaderboard:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.machine.BackToTitle()
		case key.Matches(msg, m.keys.PlayAgain):
			m.machine.StartGame()
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
		return m, m.drain()
	case timber.ScreenTitle, timber.ScreenPlaying:
		if screen == timber.ScreenTitle && msg.Type == tea.KeyEsc {
			if m.embedded {
				m.back = true
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		}
	}

	m.machine.HandleAction(m.input.MapKey(KeyEventFromMsg(msg)))
	return m, m.drain()
}

// handleNameKey edits the display name on the game-over screen.
func (m *Model) handleNameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m, m.submit()
	case tea.KeyEsc:
		m.setTyping(false)
		return m, nil
	case tea.KeyTab:
		m.setTyping(false)
		m.machine.ShowLeaderboard()
		return m, m.drain()
	}
	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// handleMouse chops on a click in the scene. Clicks on the panels of
// the game-over and leaderboard screens belong to those panels.
func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	target := core.TargetScene
	switch m.machine.State().Screen {
	case timber.ScreenGameOver, timber.ScreenLeaderboard:
		target = core.TargetButton
	}
	if ev, ok := PointerEventFromMsg(msg, m.config.ScreenW, target); ok {
		m.machine.HandleAction(m.input.MapPointer(ev))
	}
	return m, m.drain()
}

func (m *Model) toggleMute() {
	muted := !m.sound.Muted()
	m.sound.SetMuted(muted)
	m.profile.SetMuted(muted)
}

// submit sends the result to the board. There is a single attempt; the
// leaderboard screen follows whether it succeeds or not.
func (m *Model) submit() tea.Cmd {
	if !m.canSubmit() {
		return nil
	}
	name := leaderboard.SanitizeDisplayName(m.name.Value())
	m.profile.SetLastDisplayName(name)
	m.setTyping(false)
	m.submitting = true

	board, ctx, gen := m.board, m.ctx, m.gen
	sub := leaderboard.Submission{
		DisplayName: name,
		Value:       m.result.Metric,
		SessionID:   m.profile.SessionID(),
	}
	return func() tea.Msg {
		ok := board.Submit(ctx, sub)
		rank := 0
		if ok {
			rank = board.Rank(ctx, sub.Value)
		}
		return submitDoneMsg{gen: gen, ok: ok, rank: rank}
	}
}

func (m *Model) fetchCmd() tea.Cmd {
	board, ctx, gen := m.board, m.ctx, m.gen
	return func() tea.Msg {
		return boardMsg{gen: gen, entries: board.List(ctx, leaderboard.DefaultLimit)}
	}
}

// View renders the current state to a string for display.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.machine.State()
	var body string
	switch st.Screen {
	case timber.ScreenGameOver:
		body = m.gameOverView(st)
	case timber.ScreenLeaderboard:
		body = m.leaderboardView()
	default:
		body = m.sceneView(st)
	}

	helpStyle := m.style().Foreground(lipgloss.Color("241"))
	return body + "\n" + helpStyle.Render(m.help.View(m.helpKeys(st.Screen)))
}

func (m *Model) style() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

// sceneView draws the tree, with the title text on the title screen.
func (m *Model) sceneView(st timber.State) string {
	Rasterize(m.screen, timber.Project(st, m.offset))
	if st.Screen == timber.ScreenTitle {
		m.drawTitle()
	}
	return RenderScreen(m.renderer, m.screen)
}

func (m *Model) drawTitle() {
	mode := m.machine.Mode()
	lines := []string{
		"T I M B E R",
		mode.Title(),
		"",
		"Chop with ← → or A D",
		"Dodge the branches",
		"",
		"Press any key to start",
	}
	if best := m.machine.Best(); best > 0 {
		lines = append(lines, "", "Best: "+formatMetric(mode, best))
	}
	if m.sound.Muted() {
		lines = append(lines, "(muted)")
	}

	top := max((m.screen.Height()-len(lines))/3, 0)
	for i, l := range lines {
		color := core.ColorWhite
		if i == 0 {
			color = core.ColorHardHat
		}
		m.screen.DrawTextCentered(top+i, l, color)
	}
}

func (m *Model) helpKeys(screen timber.Screen) screenHelp {
	k := m.keys
	switch screen {
	case timber.ScreenTitle:
		return screenHelp{k.Chop, k.Start, k.Mute, k.Quit}
	case timber.ScreenPlaying:
		return screenHelp{k.Chop, k.Mute, k.Quit}
	case timber.ScreenGameOver:
		if m.input.TextFocus {
			return screenHelp{k.Submit, k.Leaderboard, k.Back}
		}
		keys := screenHelp{k.PlayAgain}
		if m.board.Configured() {
			keys = append(keys, k.Leaderboard)
		}
		return append(keys, k.Back, k.Quit)
	default:
		return screenHelp{k.Up, k.Down, k.PlayAgain, k.Back, k.Quit}
	}
}

// formatMetric renders a score as a count and a time in seconds.
func formatMetric(mode timber.Mode, v float64) string {
	if mode == timber.ModeTimeTrial {
		return fmt.Sprintf("%.2fs", v/1000)
	}
	return fmt.Sprintf("%d", int(v))
}

// Run starts a local session and blocks until it ends.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
