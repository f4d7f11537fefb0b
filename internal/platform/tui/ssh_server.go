package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
	"github.com/vovakirdan/timber/internal/profile"
	"github.com/vovakirdan/timber/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.timber/host_key.
	HostKeyPath string

	// DBPath is the path to the shared leaderboard and profile database.
	DBPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Game is the tuning every session plays with.
	Game config.TimberConfig

	// TickRate is the frame rate of every session.
	TickRate int

	// Logger receives server and session logs. Nil logs to stderr.
	Logger *log.Logger
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     config.GetEnv("TIMBER_SSH_ADDR", ":23234"),
		DBPath:      "~/.timber/timber.db",
		IdleTimeout: 30 * time.Minute,
		Game:        config.DefaultTimberConfig(),
		TickRate:    60,
	}
}

// SSHServer wraps a Wish SSH server. Every connection plays its own
// single-player game; sessions share only the database.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig) (*SSHServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "timber-ssh",
		})
	}

	// Resolve host key path before opening anything that needs closing
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".timber", "host_key")
	}

	// Ensure host key directory exists
	hostKeyDir := filepath.Dir(hostKeyPath)
	if mkdirErr := os.MkdirAll(hostKeyDir, 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Open storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Warn("could not open database, leaderboard disabled", "error", err)
		// Continue without storage
		store = nil
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	// Create Wish server options
	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	// Create the server
	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// sessionMode picks the mode from the command the client asked for,
// e.g. "ssh -p 23234 host time-trial". It reports false when the client
// named no valid mode.
func sessionMode(cmd []string) (timber.Mode, bool) {
	if len(cmd) > 0 && timber.Modes.Exists(cmd[0]) {
		return timber.Mode(cmd[0]), true
	}
	return timber.ModeSurvival, false
}

// newProfile returns the profile of an SSH user.
func (s *SSHServer) newProfile(user string, logger *log.Logger) *profile.Profile {
	namespace := "ssh:" + user
	if s.store == nil {
		return profile.New(profile.NewMemoryKV(), namespace, logger)
	}
	return profile.New(s.store, namespace, logger)
}

// newBoard returns the shared board of a mode, or nil without storage.
func (s *SSHServer) newBoard(mode timber.Mode, sessionID string, logger *log.Logger) *leaderboard.Client {
	if s.store == nil {
		return nil
	}
	return leaderboard.New(leaderboard.NewSQLiteBackend(s.store), mode, sessionID, logger)
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	user := sshSession.User()
	logger := s.logger.With("user", user)
	prof := s.newProfile(user, logger)
	renderer := bubbletea.MakeRenderer(sshSession)

	newGame := func(mode timber.Mode, cfg core.RuntimeConfig) (*Model, error) {
		cfg.TickRate = s.config.TickRate
		cfg.Seed = time.Now().UnixNano()
		return NewModel(Options{
			Mode:     mode,
			Game:     s.config.Game,
			Runtime:  cfg,
			Profile:  prof,
			Board:    s.newBoard(mode, prof.SessionID(), logger),
			Audio:    &audio.Silent{},
			Logger:   logger,
			Renderer: renderer,
			Context:  sshSession.Context(),
			Embedded: true,
		})
	}

	cfg := core.RuntimeConfig{
		ScreenW: pty.Window.Width,
		ScreenH: pty.Window.Height,
	}
	model := NewSessionModel(prof, cfg, newGame, logger)
	if mode, ok := sessionMode(sshSession.Command()); ok {
		model = model.withGame(mode)
	}

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	// Setup signal handling for graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
		s.logger.Info("shutting down...")
		return s.Shutdown()
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		s.Shutdown() //nolint:errcheck // Already failing
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.store != nil {
		s.store.Close()
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// GameFactory builds the game of a session.
type GameFactory func(mode timber.Mode, cfg core.RuntimeConfig) (*Model, error)

// SessionModel manages the full session flow: menu -> game -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	profile  *profile.Profile
	config   core.RuntimeConfig
	newGame  GameFactory
	logger   *log.Logger
	menu     MenuModel
	game     *Model
	quitting bool
}

// NewSessionModel creates a session that starts on the mode menu.
func NewSessionModel(prof *profile.Profile, cfg core.RuntimeConfig, newGame GameFactory, logger *log.Logger) SessionModel {
	if logger == nil {
		logger = log.Default()
	}
	return SessionModel{
		profile: prof,
		config:  cfg,
		newGame: newGame,
		logger:  logger,
		menu:    NewMenuModel(prof, cfg),
	}
}

// withGame skips the menu and starts mode right away.
func (m SessionModel) withGame(mode timber.Mode) SessionModel {
	game, err := m.newGame(mode, m.config)
	if err != nil {
		m.logger.Error("cannot start game", "mode", string(mode), "error", err)
		return m
	}
	m.game = game
	return m
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.game != nil {
		return m.game.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle window resize globally
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
		newMenu, _ := m.menu.Update(msg)
		if menuModel, ok := newMenu.(MenuModel); ok {
			m.menu = menuModel
		}
	}

	if m.game != nil {
		return m.updateGame(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	// Check if user quit
	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Check if a mode was selected; the menu's own quit command is dropped
	if selected := m.menu.Selected(); selected != nil {
		m = m.withGame(selected.Mode)
		if m.game == nil {
			m.menu = NewMenuModel(m.profile, m.config)
			return m, nil
		}
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := m.game.Update(msg)

	// Check if user quit entirely
	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	// Check if user went back to the menu
	if m.game.BackToMenu() {
		m.game = nil
		m.menu = NewMenuModel(m.profile, m.config)
		return m, m.menu.Init()
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	if m.game != nil {
		return m.game.View()
	}

	return m.menu.View()
}
