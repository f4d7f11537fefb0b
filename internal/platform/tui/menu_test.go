package tui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/profile"
)

var menuConfig = core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 3}

func keyMsg(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func sendMenu(m MenuModel, msg tea.Msg) (MenuModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(MenuModel), cmd
}

func TestMenuListsModes(t *testing.T) {
	m := NewMenuModel(nil, menuConfig)

	if len(m.items) != 2 {
		t.Fatalf("items = %d, want 2", len(m.items))
	}
	if m.items[0].Mode != timber.ModeSurvival || m.items[1].Mode != timber.ModeTimeTrial {
		t.Errorf("items = %v, want survival then time-trial", m.items)
	}

	view := m.View()
	for _, want := range []string{"T I M B E R", "> Survival", "Time Trial"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestMenuShowsBests(t *testing.T) {
	prof := profile.New(profile.NewMemoryKV(), "menu", log.New(io.Discard))
	prof.SetBest(timber.ModeSurvival, 42)
	prof.SetBest(timber.ModeTimeTrial, 31500)

	view := NewMenuModel(prof, menuConfig).View()
	if !strings.Contains(view, "(best 42)") {
		t.Error("survival best not shown")
	}
	if !strings.Contains(view, "(best 31.50s)") {
		t.Error("time trial best not shown")
	}
}

func TestMenuNavigation(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want int
	}{
		{"start", nil, 0},
		{"down", []tea.KeyMsg{keyMsg(tea.KeyDown)}, 1},
		{"clamped at bottom", []tea.KeyMsg{keyMsg(tea.KeyDown), keyMsg(tea.KeyDown), runes("j")}, 1},
		{"clamped at top", []tea.KeyMsg{keyMsg(tea.KeyUp), runes("w")}, 0},
		{"down then up", []tea.KeyMsg{runes("s"), runes("k")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMenuModel(nil, menuConfig)
			for _, k := range tt.keys {
				m, _ = sendMenu(m, k)
			}
			if m.cursor != tt.want {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.want)
			}
		})
	}
}

func TestMenuSelectAndQuit(t *testing.T) {
	m := NewMenuModel(nil, menuConfig)
	m, _ = sendMenu(m, keyMsg(tea.KeyDown))
	m, cmd := sendMenu(m, keyMsg(tea.KeyEnter))

	sel := m.Selected()
	if sel == nil || sel.Mode != timber.ModeTimeTrial {
		t.Fatalf("Selected() = %v, want time-trial", sel)
	}
	if cmd == nil {
		t.Error("select should end the menu program")
	}

	m = NewMenuModel(nil, menuConfig)
	m, _ = sendMenu(m, runes("q"))
	if !m.IsQuitting() || m.Selected() != nil {
		t.Error("q should quit without a selection")
	}
	if m.View() != "" {
		t.Error("quitting menu should render nothing")
	}
}

func TestMenuResize(t *testing.T) {
	m, _ := sendMenu(NewMenuModel(nil, menuConfig), tea.WindowSizeMsg{Width: 100, Height: 30})
	if cfg := m.Config(); cfg.ScreenW != 100 || cfg.ScreenH != 30 {
		t.Errorf("Config() = %dx%d, want 100x30", cfg.ScreenW, cfg.ScreenH)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab" {
		t.Errorf("centerText = %q", got)
	}
	if got := centerText("★★", 4); got != " ★★" {
		t.Errorf("centerText counts bytes: %q", got)
	}
	if got := centerText("long text", 4); got != "long text" {
		t.Errorf("centerText = %q", got)
	}
}

type sessionHarness struct {
	created []timber.Mode
	fail    bool
}

func (h *sessionHarness) factory(logger *log.Logger, prof *profile.Profile) GameFactory {
	return func(mode timber.Mode, cfg core.RuntimeConfig) (*Model, error) {
		if h.fail {
			return nil, errors.New("no game today")
		}
		h.created = append(h.created, mode)
		return NewModel(Options{
			Mode:     mode,
			Runtime:  cfg,
			Profile:  prof,
			Audio:    &audio.Silent{},
			Logger:   logger,
			Embedded: true,
		})
	}
}

func newSession(t *testing.T, h *sessionHarness) SessionModel {
	t.Helper()
	logger := log.New(io.Discard)
	prof := profile.New(profile.NewMemoryKV(), "session", logger)
	return NewSessionModel(prof, menuConfig, h.factory(logger, prof), logger)
}

func sendSession(m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(SessionModel), cmd
}

func TestSessionMenuToGameAndBack(t *testing.T) {
	h := &sessionHarness{}
	s := newSession(t, h)

	s, _ = sendSession(s, keyMsg(tea.KeyDown))
	s, cmd := sendSession(s, keyMsg(tea.KeyEnter))
	if s.game == nil {
		t.Fatal("selecting a mode should start a game")
	}
	if cmd == nil {
		t.Error("starting a game should start its tick loop")
	}
	if len(h.created) != 1 || h.created[0] != timber.ModeTimeTrial {
		t.Fatalf("created = %v, want [time-trial]", h.created)
	}
	if !strings.Contains(s.View(), "T I M B E R") {
		t.Error("game title screen not shown")
	}

	s, _ = sendSession(s, keyMsg(tea.KeyEsc))
	if s.game != nil {
		t.Fatal("esc on the title screen should return to the menu")
	}
	if s.quitting {
		t.Error("returning to the menu must not quit")
	}
	if !strings.Contains(s.View(), "Select a mode") {
		t.Error("menu not shown after leaving the game")
	}
}

func TestSessionWithGameSkipsMenu(t *testing.T) {
	h := &sessionHarness{}
	s := newSession(t, h).withGame(timber.ModeSurvival)

	if s.game == nil {
		t.Fatal("withGame should start the game")
	}
	if s.Init() == nil {
		t.Error("Init should start the game's tick loop")
	}
}

func TestSessionFactoryErrorStaysOnMenu(t *testing.T) {
	h := &sessionHarness{fail: true}
	s := newSession(t, h)

	s, cmd := sendSession(s, keyMsg(tea.KeyEnter))
	if s.game != nil || s.quitting {
		t.Fatal("a failed game should leave the session on the menu")
	}
	if cmd != nil {
		t.Error("a failed game should not quit the program")
	}
	if s.menu.Selected() != nil {
		t.Error("the menu should be reset after a failed start")
	}
}

func TestSessionQuit(t *testing.T) {
	s := newSession(t, &sessionHarness{})
	s, cmd := sendSession(s, runes("q"))
	if !s.quitting || cmd == nil {
		t.Error("q on the menu should quit the session")
	}
	if s.View() != "" {
		t.Error("quitting session should render nothing")
	}

	s = newSession(t, &sessionHarness{}).withGame(timber.ModeSurvival)
	s, cmd = sendSession(s, runes("q"))
	if !s.quitting || cmd == nil {
		t.Error("q in a game should quit the session")
	}
}

func TestSessionResizeReachesNewGames(t *testing.T) {
	h := &sessionHarness{}
	s := newSession(t, h)
	s, _ = sendSession(s, tea.WindowSizeMsg{Width: 120, Height: 40})
	s, _ = sendSession(s, keyMsg(tea.KeyEnter))

	if s.game == nil {
		t.Fatal("game not started")
	}
	if cfg := s.menu.Config(); cfg.ScreenW != 120 {
		t.Errorf("menu width = %d, want 120", cfg.ScreenW)
	}
	if s.config.ScreenW != 120 || s.config.ScreenH != 40 {
		t.Errorf("session config = %dx%d, want 120x40", s.config.ScreenW, s.config.ScreenH)
	}
}
