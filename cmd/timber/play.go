package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/timber/internal/audio"
	"github.com/vovakirdan/timber/internal/audio/synth"
	"github.com/vovakirdan/timber/internal/config"
	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
	"github.com/vovakirdan/timber/internal/platform/tui"
	"github.com/vovakirdan/timber/internal/profile"
	"github.com/vovakirdan/timber/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagMute       bool
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a game mode",
	Long: `Start playing the specified mode (survival by default).

Modes:
  survival    - Chop as long as the timer lasts; every chop refills it
  time-trial  - Chop 100 blocks as fast as you can

Controls:
  Left/A, Right/D  - Chop from that side (mouse clicks work too)
  M                - Toggle sound
  Enter            - Submit your name / play again
  Tab              - Leaderboard
  Esc              - Back to the title screen
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Slower timer, fewer branches
  normal - Default tuning
  hard   - Faster timer, more branches
  fixed  - No progression, stays at the starting pace

Scores go to the local database unless TIMBER_LEADERBOARD_URL and
TIMBER_LEADERBOARD_KEY point at a remote leaderboard.

Examples:
  timber play
  timber play time-trial
  timber play --difficulty hard
  timber play --config ./my-timber.yaml --mute`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().BoolVar(&flagMute, "mute", false, "Start with sound off")
}

// loadGameConfig reads the tuning and applies the difficulty preset.
func loadGameConfig() (config.TimberConfig, error) {
	cfg, err := config.LoadTimber(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDifficulty != "" {
		preset, ok := config.ParsePreset(flagDifficulty)
		if !ok {
			return cfg, fmt.Errorf("unknown difficulty %q (want easy, normal, hard or fixed)", flagDifficulty)
		}
		config.ApplyTimberPreset(&cfg, preset)
	}
	return cfg, cfg.Validate()
}

// parseMode resolves the optional mode argument.
func parseMode(args []string) (timber.Mode, error) {
	if len(args) == 0 {
		return timber.ModeSurvival, nil
	}
	if !timber.Modes.Exists(args[0]) {
		return "", fmt.Errorf("unknown mode %q, run 'timber list' to see available modes", args[0])
	}
	return timber.Mode(args[0]), nil
}

// openBoard picks the remote leaderboard when one is configured and the
// local database otherwise. It returns nil when neither is available.
func openBoard(store *storage.Store, mode timber.Mode, sessionID string, logger *log.Logger) *leaderboard.Client {
	if remote := leaderboard.RESTFromEnv(); remote.Configured() {
		return leaderboard.New(remote, mode, sessionID, logger)
	}
	if store == nil {
		return nil
	}
	return leaderboard.New(leaderboard.NewSQLiteBackend(store), mode, sessionID, logger)
}

// localSession holds what a game in this terminal needs.
type localSession struct {
	logFile *os.File
	logger  *log.Logger
	store   *storage.Store
	profile *profile.Profile
	sound   audio.Player
	game    config.TimberConfig
	runtime core.RuntimeConfig
}

// openLocalSession loads the config and opens the log, the database
// and the audio device. A missing database only disables persistence.
func openLocalSession() (*localSession, error) {
	gameCfg, err := loadGameConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logFile, err := openLogFile()
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	logger, err := newLogger(logFile, "timber")
	if err != nil {
		logFile.Close()
		return nil, err
	}

	runtime := core.DefaultConfig()
	runtime.TickRate = flagFPS
	runtime.Seed = flagSeed

	// Get terminal size
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		runtime.ScreenW = w
		runtime.ScreenH = h
	}

	s := &localSession{
		logFile: logFile,
		logger:  logger,
		game:    gameCfg,
		runtime: runtime,
	}

	// Open storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		logger.Warn("could not open database", "error", err)
		// Continue without storage - game still works
	} else {
		s.store = store
	}

	if s.store != nil {
		s.profile = profile.New(s.store, "local", logger)
	} else {
		s.profile = profile.New(profile.NewMemoryKV(), "local", logger)
	}

	s.sound = synth.Open(logger, s.profile.Muted() || flagMute)
	return s, nil
}

// options returns the game options for mode.
func (s *localSession) options(mode timber.Mode) tui.Options {
	return tui.Options{
		Mode:    mode,
		Game:    s.game,
		Runtime: s.runtime,
		Profile: s.profile,
		Board:   openBoard(s.store, mode, s.profile.SessionID(), s.logger),
		Audio:   s.sound,
		Mute:    flagMute,
		Logger:  s.logger,
	}
}

func (s *localSession) Close() {
	if s.store != nil {
		s.store.Close()
	}
	s.logFile.Close()
}

func runPlay(cmd *cobra.Command, args []string) {
	mode, err := parseMode(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session, err := openLocalSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	session.logger.Info("starting game", "mode", string(mode), "seed", flagSeed, "difficulty", flagDifficulty)

	// Run the game
	runErr := tui.Run(session.options(mode))

	// Close store before potential exit
	session.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
