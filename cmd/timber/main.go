// timber is a lumberjack arcade game for the terminal.
//
// Usage:
//
//	timber list              - List game modes
//	timber play [mode]       - Play a mode (default: survival)
//	timber menu              - Pick a mode interactively
//	timber serve             - Start SSH server for remote play
//	timber scores [mode]     - Show the leaderboard of a mode
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--seed <value>      - Set RNG seed for reproducible gameplay
//	--db <path>         - Set database path (default: ~/.timber/timber.db)
//	--log-level <level> - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "timber",
	Short: "Timber - chop the tree, dodge the branches",
	Long: `Timber is a lumberjack arcade game for your terminal.

Chop the trunk from the left or the right. Every chop drops the tree by
one segment; a branch above your head ends the run.

Available commands:
  list     - Show all game modes
  play     - Play a mode
  menu     - Interactive mode picker
  serve    - Start SSH server for remote play
  scores   - View the leaderboard

Examples:
  timber list
  timber play
  timber play time-trial --difficulty hard
  timber serve --ssh :2222
  timber scores survival`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.timber/timber.db", "Path to leaderboard and profile database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// newLogger builds the root logger writing to w.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}

// openLogFile opens ~/.timber/timber.log for appending. The game owns
// the terminal while it runs, so local logs go to a file.
func openLogFile() (*os.File, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".timber")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return os.OpenFile(filepath.Join(dir, "timber.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}
