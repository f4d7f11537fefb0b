package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/timber/internal/core"
	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a mode from a menu",
	Long: `Start an interactive mode picker.

Use arrow keys or W/S to navigate, Enter to play. Esc on a game's title
screen returns to the menu.`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	menuCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	menuCmd.Flags().BoolVar(&flagMute, "mute", false, "Start with sound off")
}

func runMenu(_ *cobra.Command, _ []string) {
	session, err := openLocalSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	newGame := func(mode timber.Mode, cfg core.RuntimeConfig) (*tui.Model, error) {
		opts := session.options(mode)
		opts.Runtime.ScreenW, opts.Runtime.ScreenH = cfg.ScreenW, cfg.ScreenH
		opts.Embedded = true
		session.logger.Info("starting game", "mode", string(mode))
		return tui.NewModel(opts)
	}

	runErr := tui.RunSession(session.profile, session.runtime, newGame, session.logger)
	session.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running menu: %v\n", runErr)
		os.Exit(1)
	}
}
