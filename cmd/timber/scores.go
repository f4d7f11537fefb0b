package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
	"github.com/vovakirdan/timber/internal/profile"
	"github.com/vovakirdan/timber/internal/storage"
)

var (
	flagScoresLimit  int
	flagClear        bool
	flagResetProfile bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show the leaderboard of a mode",
	Long: `Display the top scores for the specified mode (survival by default).

Reads the remote leaderboard when TIMBER_LEADERBOARD_URL and
TIMBER_LEADERBOARD_KEY are set, the local database otherwise.

Examples:
  timber scores
  timber scores time-trial --limit 25
  timber scores survival --clear
  timber scores --reset-profile`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every local entry of the mode")
	scoresCmd.Flags().BoolVar(&flagResetProfile, "reset-profile", false, "Forget the local player's bests, name and settings")
}

func runScores(cmd *cobra.Command, args []string) {
	mode, err := parseMode(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(os.Stderr, "timber")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	if flagResetProfile {
		if err := profile.New(store, "local", logger).Reset(); err != nil {
			fmt.Fprintf(os.Stderr, "Error resetting profile: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Local profile reset.")
		if !flagClear {
			return
		}
	}
	if flagClear {
		if err := store.ClearScores(ctx, string(mode)); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared local %s leaderboard.\n", mode.Title())
		return
	}

	printBoard(ctx, openBoard(store, mode, "", logger), mode)
	printLocalStats(ctx, store, mode, logger)
}

func printBoard(ctx context.Context, board *leaderboard.Client, mode timber.Mode) {
	fmt.Printf("Leaderboard - %s\n", mode.Title())
	fmt.Println()

	entries := board.List(ctx, flagScoresLimit)
	if len(entries) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'timber play %s' to set the first score!\n", mode)
		return
	}

	// Print header
	fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "Rank", "Name", metricHeader(mode), "Date")
	fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "----", "----", "-----", "----")

	for _, e := range entries {
		dateStr := e.Date.Local().Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-20s  %-10s  %s\n", e.Rank, e.DisplayName, formatValue(mode, e.Value), dateStr)
	}
}

// printLocalStats summarises the local board.
func printLocalStats(ctx context.Context, store *storage.Store, mode timber.Mode, logger *log.Logger) {
	order := storage.HighFirst
	if mode.LowerIsBetter() {
		order = storage.LowFirst
	}
	stats, err := store.GetBoardStats(ctx, string(mode), order)
	if err != nil {
		logger.Warn("cannot read local stats", "error", err)
		return
	}
	if stats.Entries == 0 {
		return
	}

	fmt.Println()
	fmt.Printf("Local games: %d  Best: %s  Average: %s\n",
		stats.Entries, formatValue(mode, stats.Best), formatValue(mode, stats.Average))
	if !stats.LastPlayed.IsZero() {
		fmt.Printf("Last played: %s\n", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
}

func metricHeader(mode timber.Mode) string {
	if mode == timber.ModeTimeTrial {
		return "Time"
	}
	return "Score"
}

func formatValue(mode timber.Mode, v float64) string {
	if mode == timber.ModeTimeTrial {
		return fmt.Sprintf("%.2fs", v/1000)
	}
	return fmt.Sprintf("%.0f", v)
}
