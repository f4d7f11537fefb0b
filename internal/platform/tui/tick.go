// Package tui runs the game in a terminal with Bubble Tea, locally or
// over SSH. It maps key and mouse messages onto game actions, rasterises
// the projected scene into cells and hosts the game-over and leaderboard
// panels.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg is sent to trigger a game frame. Loop identifies the model
// that armed it, so a session that swaps games never runs two loops.
type TickMsg struct {
	Time time.Time
	Loop int64
}

var loopSeq atomic.Int64

// nextLoop returns a fresh tick loop id.
func nextLoop() int64 {
	return loopSeq.Add(1)
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int, loop int64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Loop: loop}
	})
}

// frameDelta returns the milliseconds between two ticks. The first tick
// after a start or a resume counts as one nominal frame.
func frameDelta(last, now time.Time, tickRate int) float64 {
	if last.IsZero() || now.Before(last) {
		if tickRate <= 0 {
			tickRate = 60
		}
		return 1000 / float64(tickRate)
	}
	return float64(now.Sub(last)) / float64(time.Millisecond)
}
