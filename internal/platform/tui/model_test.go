package tui

import (
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
	"github.com/vovakirdan/timber/internal/profile"
	"github.com/vovakirdan/timber/internal/storage"
)

type testSession struct {
	model   *Model
	profile *profile.Profile
	sound   *audio.Silent
	now     time.Time
}

func newTestSession(t *testing.T, withBoard bool) *testSession {
	t.Helper()
	return newModeSession(t, timber.ModeSurvival, withBoard)
}

func newModeSession(t *testing.T, mode timber.Mode, withBoard bool) *testSession {
	t.Helper()
	logger := log.New(io.Discard)

	prof := profile.New(profile.NewMemoryKV(), "test", logger)
	var board *leaderboard.Client
	if withBoard {
		store, err := storage.Open(filepath.Join(t.TempDir(), "timber.db"))
		if err != nil {
			t.Fatalf("Open() failed: %v", err)
		}
		t.Cleanup(func() { store.Close() })
		board = leaderboard.New(leaderboard.NewSQLiteBackend(store), mode, prof.SessionID(), logger)
	}

	sound := &audio.Silent{}
	m, err := NewModel(Options{
		Mode:    mode,
		Runtime: core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 30, Seed: 7},
		Profile: prof,
		Board:   board,
		Audio:   sound,
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	return &testSession{model: m, profile: prof, sound: sound, now: time.Unix(1000, 0)}
}

func (s *testSession) send(msg tea.Msg) tea.Cmd {
	_, cmd := s.model.Update(msg)
	return cmd
}

// tick advances the session by n frames of 100ms wall time.
func (s *testSession) tick(n int) {
	for range n {
		s.now = s.now.Add(100 * time.Millisecond)
		s.send(TickMsg{Time: s.now, Loop: s.model.loop})
	}
}

// settle runs leaderboard commands and feeds their replies back. Other
// commands (ticks, cursor blink) are dropped.
func (s *testSession) settle(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			s.settle(c)
		}
	case submitDoneMsg, boardMsg:
		s.settle(s.send(msg))
	}
}

func (s *testSession) screen() timber.Screen {
	return s.model.Machine().State().Screen
}

// playUntilTimeout starts a game and lets the timer run out.
func (s *testSession) playUntilTimeout(t *testing.T) {
	t.Helper()
	s.send(runes("x"))
	if s.screen() != timber.ScreenPlaying {
		t.Fatalf("screen = %v after any key, want playing", s.screen())
	}
	// 1.0 / (0.15 * 33.33ms) is 200 clamped frames, plus the 500ms pause
	s.tick(220)
	if s.screen() != timber.ScreenGameOver {
		t.Fatalf("screen = %v after the timer ran out, want game over", s.screen())
	}
}

func TestModelStartsOnTitle(t *testing.T) {
	s := newTestSession(t, false)

	if s.screen() != timber.ScreenTitle {
		t.Fatalf("screen = %v, want title", s.screen())
	}
	view := s.model.View()
	if !strings.Contains(view, "T I M B E R") {
		t.Error("title view is missing the title")
	}
	if !strings.Contains(view, "chop") {
		t.Error("title view is missing the help bar")
	}
}

func TestModelClickChopsFromTitle(t *testing.T) {
	s := newTestSession(t, false)

	s.send(tea.MouseMsg{X: 70, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})

	st := s.model.Machine().State()
	if st.Screen != timber.ScreenPlaying {
		t.Fatalf("screen = %v, want playing", st.Screen)
	}
	if st.PlayerSide != timber.SideRight || st.Score != 1 {
		t.Errorf("side = %v score = %d, want right and 1", st.PlayerSide, st.Score)
	}
}

func TestModelArrowKeysChop(t *testing.T) {
	s := newTestSession(t, false)

	s.send(tea.KeyMsg{Type: tea.KeyLeft})
	st := s.model.Machine().State()
	if st.PlayerSide != timber.SideLeft || st.Score != 1 {
		t.Errorf("side = %v score = %d, want left and 1", st.PlayerSide, st.Score)
	}
	if !strings.Contains(s.model.View(), "1") {
		t.Error("HUD does not show the score")
	}
}

// chopIntoBranch chops safely until a branch reaches the bottom, then
// chops into it.
func (s *testSession) chopIntoBranch(t *testing.T) {
	t.Helper()
	for range 90 {
		st := s.model.Machine().State()
		switch st.Segments[0].Obstacle {
		case timber.ObstacleLeft:
			s.send(tea.KeyMsg{Type: tea.KeyLeft})
			return
		case timber.ObstacleRight:
			s.send(tea.KeyMsg{Type: tea.KeyRight})
			return
		}
		s.send(tea.KeyMsg{Type: tea.KeyLeft})
		s.tick(1)
	}
	t.Fatal("no branch reached the bottom of the tree")
}

func TestModelLostTimeTrialKeepsBest(t *testing.T) {
	s := newModeSession(t, timber.ModeTimeTrial, true)

	s.send(runes("x"))
	s.tick(3)
	s.chopIntoBranch(t)
	s.tick(10)

	st := s.model.Machine().State()
	if s.screen() != timber.ScreenGameOver || st.GameWon || !st.IsPlayerDead {
		t.Fatalf("screen = %v won = %v dead = %v, want a lost game over", s.screen(), st.GameWon, st.IsPlayerDead)
	}
	if best := s.profile.Best(timber.ModeTimeTrial); best != 0 {
		t.Errorf("profile best time = %v after a lost run, want 0", best)
	}
	if s.profile.Player().TotalGamesPlayed != 1 {
		t.Errorf("games played = %d, want 1", s.profile.Player().TotalGamesPlayed)
	}
	if s.model.input.TextFocus {
		t.Error("a lost time trial must not be offered for submission")
	}
	if strings.Contains(s.model.View(), "New best!") {
		t.Error("lost run shown as a new best")
	}
}

func TestModelSurvivalCollisionRecordsBest(t *testing.T) {
	s := newTestSession(t, false)

	s.send(runes("x"))
	s.tick(3)
	s.chopIntoBranch(t)
	s.tick(10)

	// The first segments never carry a branch
	score := s.model.Machine().State().Score
	if score == 0 {
		t.Fatal("died without chopping")
	}
	if best := s.profile.Best(timber.ModeSurvival); best != float64(score) {
		t.Errorf("profile best = %v, want %d", best, score)
	}
}

func TestModelTimeoutWithoutBoard(t *testing.T) {
	s := newTestSession(t, false)
	s.playUntilTimeout(t)

	if s.model.input.TextFocus {
		t.Error("name entry shown without a leaderboard")
	}
	if s.profile.Player().TotalGamesPlayed != 1 {
		t.Errorf("games played = %d, want 1", s.profile.Player().TotalGamesPlayed)
	}
	view := s.model.View()
	if !strings.Contains(view, "GAME OVER") || !strings.Contains(view, "Out of time") {
		t.Errorf("game over view = %q", view)
	}

	// Leaderboard key is inert without a board
	s.send(tea.KeyMsg{Type: tea.KeyTab})
	if s.screen() != timber.ScreenGameOver {
		t.Errorf("tab moved to %v without a leaderboard", s.screen())
	}

	s.send(tea.KeyMsg{Type: tea.KeyEnter})
	if s.screen() != timber.ScreenPlaying {
		t.Errorf("enter on game over -> %v, want playing", s.screen())
	}
}

func TestModelSubmitFlow(t *testing.T) {
	s := newTestSession(t, true)
	s.playUntilTimeout(t)

	if !s.model.input.TextFocus {
		t.Fatal("name entry not focused on game over")
	}

	// Chop keys type into the name field instead of chopping
	for _, r := range "Ada" {
		s.send(runes(string(r)))
	}
	if got := s.model.name.Value(); got != "Ada" {
		t.Fatalf("name = %q, want Ada", got)
	}
	if s.screen() != timber.ScreenGameOver {
		t.Fatalf("typing changed the screen to %v", s.screen())
	}

	s.settle(s.send(tea.KeyMsg{Type: tea.KeyEnter}))

	if s.screen() != timber.ScreenLeaderboard {
		t.Fatalf("screen = %v after submit, want leaderboard", s.screen())
	}
	if !s.model.submitted || s.model.rank != 1 {
		t.Errorf("submitted = %v rank = %d", s.model.submitted, s.model.rank)
	}
	if len(s.model.entries) != 1 {
		t.Fatalf("leaderboard has %d entries, want 1", len(s.model.entries))
	}
	e := s.model.entries[0]
	if e.DisplayName != "Ada" || !e.IsCurrentPlayer {
		t.Errorf("entry = %+v", e)
	}
	if s.profile.LastDisplayName() != "Ada" {
		t.Errorf("last display name = %q", s.profile.LastDisplayName())
	}

	view := s.model.View()
	if !strings.Contains(view, "LEADERBOARD") || !strings.Contains(view, "Your rank: #1") {
		t.Errorf("leaderboard view = %q", view)
	}

	s.send(tea.KeyMsg{Type: tea.KeyEsc})
	if s.screen() != timber.ScreenTitle {
		t.Errorf("esc on leaderboard -> %v, want title", s.screen())
	}
}

func TestModelNamePrefilled(t *testing.T) {
	s := newTestSession(t, true)
	s.profile.SetLastDisplayName("Bo")
	s.playUntilTimeout(t)

	if got := s.model.name.Value(); got != "Bo" {
		t.Errorf("name = %q, want the last display name", got)
	}
}

func TestModelSkipSubmission(t *testing.T) {
	s := newTestSession(t, true)
	s.playUntilTimeout(t)

	s.settle(s.send(tea.KeyMsg{Type: tea.KeyTab}))

	if s.screen() != timber.ScreenLeaderboard {
		t.Fatalf("screen = %v, want leaderboard", s.screen())
	}
	if s.model.submitted || len(s.model.entries) != 0 {
		t.Errorf("skipping still submitted: %+v", s.model.entries)
	}
	if !strings.Contains(s.model.View(), "No scores recorded yet") {
		t.Error("empty board message missing")
	}

	s.send(runes("r"))
	if s.screen() != timber.ScreenPlaying {
		t.Errorf("r on leaderboard -> %v, want playing", s.screen())
	}
}

func TestModelStaleSubmitIgnored(t *testing.T) {
	s := newTestSession(t, true)

	s.send(submitDoneMsg{gen: 42, ok: true, rank: 3})

	if s.screen() != timber.ScreenTitle || s.model.rank != 0 {
		t.Errorf("stale reply applied: screen %v rank %d", s.screen(), s.model.rank)
	}
}

func TestModelStaleBoardIgnored(t *testing.T) {
	s := newTestSession(t, true)
	s.model.loading = true

	s.send(boardMsg{gen: 42, entries: []leaderboard.Entry{{Rank: 1, DisplayName: "Old", Value: 9}}})
	if len(s.model.entries) != 0 || !s.model.loading {
		t.Errorf("stale board applied: %d entries, loading %v", len(s.model.entries), s.model.loading)
	}

	s.send(boardMsg{gen: s.model.gen, entries: []leaderboard.Entry{{Rank: 1, DisplayName: "New", Value: 12}}})
	if len(s.model.entries) != 1 || s.model.loading {
		t.Errorf("current board not applied: %d entries, loading %v", len(s.model.entries), s.model.loading)
	}
}

func TestModelMuteToggle(t *testing.T) {
	s := newTestSession(t, false)

	s.send(runes("m"))
	if !s.sound.Muted() || !s.profile.Muted() {
		t.Fatal("m did not mute")
	}
	if s.screen() != timber.ScreenTitle {
		t.Errorf("mute started a game")
	}
	if !strings.Contains(s.model.View(), "(muted)") {
		t.Error("title does not show muted")
	}

	s.send(runes("m"))
	if s.sound.Muted() || s.profile.Muted() {
		t.Error("second m did not unmute")
	}
}

func TestModelRestoresMute(t *testing.T) {
	logger := log.New(io.Discard)
	prof := profile.New(profile.NewMemoryKV(), "test", logger)
	prof.SetMuted(true)
	sound := &audio.Silent{}

	if _, err := NewModel(Options{Profile: prof, Audio: sound, Logger: logger}); err != nil {
		t.Fatalf("NewModel() failed: %v", err)
	}
	if !sound.Muted() {
		t.Error("saved mute setting not applied to audio")
	}
}

func TestModelQuit(t *testing.T) {
	s := newTestSession(t, false)

	cmd := s.send(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if s.model.View() != "" {
		t.Error("view not empty after quit")
	}
}

func TestModelResize(t *testing.T) {
	s := newTestSession(t, false)

	s.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	if s.model.screen.Width() != 120 || s.model.screen.Height() != 39 {
		t.Errorf("screen = %dx%d, want 120x39", s.model.screen.Width(), s.model.screen.Height())
	}
}

func TestModelUnknownMode(t *testing.T) {
	_, err := NewModel(Options{Mode: "marathon", Logger: log.New(io.Discard)})
	if err == nil {
		t.Error("NewModel() with an unknown mode should fail")
	}
}

func TestFormatMetric(t *testing.T) {
	if got := formatMetric(timber.ModeSurvival, 42); got != "42" {
		t.Errorf("survival = %q", got)
	}
	if got := formatMetric(timber.ModeTimeTrial, 31250); got != "31.25s" {
		t.Errorf("time-trial = %q", got)
	}
}

func TestFrameDelta(t *testing.T) {
	base := time.Unix(100, 0)
	if got := frameDelta(time.Time{}, base, 50); got != 20 {
		t.Errorf("first frame = %v, want 20", got)
	}
	if got := frameDelta(base, base.Add(45*time.Millisecond), 50); got != 45 {
		t.Errorf("delta = %v, want 45", got)
	}
	if got := frameDelta(base, base.Add(-time.Second), 50); got != 20 {
		t.Errorf("backwards clock = %v, want 20", got)
	}
}
