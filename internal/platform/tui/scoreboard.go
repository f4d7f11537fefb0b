package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/timber/internal/games/timber"
	"github.com/vovakirdan/timber/internal/leaderboard"
)

// Leaderboard layout constants
const (
	tableMinHeight = 5
	panelWidth     = 44
	currentMarker  = "★"
)

// createTable creates a new table with appropriate columns.
func (m *Model) createTable() table.Model {
	columns := []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Name", Width: leaderboard.MaxNameLength},
		{Title: metricTitle(m.machine.Mode()), Width: 9},
		{Title: "Date", Width: 12},
	}

	// Narrow terminals lose the date first
	if m.config.ScreenW > 0 && m.config.ScreenW < 60 {
		columns = columns[:3]
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.config.ScreenH-10, tableMinHeight)), // Leave room for title, rank and help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows updates the table with current entries.
func (m *Model) updateTableRows() {
	mode := m.machine.Mode()
	wide := len(m.table.Columns()) > 3

	rows := make([]table.Row, len(m.entries))
	selected := 0
	for i, e := range m.entries {
		rank := fmt.Sprintf("#%d", e.Rank)
		if e.IsCurrentPlayer {
			rank = currentMarker + rank
		}
		row := table.Row{rank, e.DisplayName, formatMetric(mode, e.Value)}
		if wide {
			row = append(row, e.Date.Local().Format("Jan 02 15:04"))
		}
		rows[i] = row

		if m.rank > 0 && e.Rank == m.rank && e.IsCurrentPlayer {
			selected = i
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(selected)
}

func metricTitle(mode timber.Mode) string {
	if mode == timber.ModeTimeTrial {
		return "Time"
	}
	return "Score"
}

// gameOverView renders the result panel with the optional name entry.
func (m *Model) gameOverView(st timber.State) string {
	mode := m.machine.Mode()
	title := "GAME OVER"
	reason := ""
	switch {
	case st.GameWon:
		title = "TIMBER!"
		reason = fmt.Sprintf("%d blocks chopped", st.BlocksChopped)
	case st.DeathReason == timber.DeathCollision:
		reason = "Hit by a branch"
	case st.DeathReason == timber.DeathTimeout:
		reason = "Out of time"
	}

	titleStyle := m.style().Bold(true).Foreground(lipgloss.Color("229"))
	dim := m.style().Foreground(lipgloss.Color("241"))
	accent := m.style().Bold(true).Foreground(lipgloss.Color(string(timber.TimerColor(1))))

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if reason != "" {
		b.WriteString(dim.Render(reason))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.result != nil && (mode == timber.ModeSurvival || m.result.Won) {
		fmt.Fprintf(&b, "%s: %s\n", metricTitle(mode), formatMetric(mode, m.result.Metric))
	} else if mode == timber.ModeTimeTrial {
		fmt.Fprintf(&b, "Blocks: %d / %d\n", st.BlocksChopped, st.TargetBlocks)
	}
	if best := m.machine.Best(); best > 0 {
		fmt.Fprintf(&b, "Best: %s\n", formatMetric(mode, best))
	}
	if m.result != nil && m.result.NewBest {
		b.WriteString(accent.Render("New best!"))
		b.WriteString("\n")
	}

	switch {
	case m.input.TextFocus:
		b.WriteString("\n")
		b.WriteString(m.name.View())
		b.WriteString("\n")
	case m.submitting:
		b.WriteString("\n")
		b.WriteString(dim.Render("Submitting..."))
		b.WriteString("\n")
	}

	return m.panel(b.String())
}

// leaderboardView renders the board table and the player's rank.
func (m *Model) leaderboardView() string {
	titleStyle := m.style().Bold(true).Foreground(lipgloss.Color("229"))

	var b strings.Builder
	b.WriteString(titleStyle.Render("LEADERBOARD - " + m.machine.Mode().Title()))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.emptyMessage("Loading..."))
	case len(m.entries) == 0:
		b.WriteString(m.emptyMessage("No scores recorded yet.\nBe the first on the board!"))
	default:
		b.WriteString(m.table.View())
	}

	if m.rank > 0 {
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "Your rank: #%d", m.rank)
	} else if m.result != nil && m.submitted {
		b.WriteString("\n\nSubmitted")
	}

	return m.place(b.String())
}

func (m *Model) emptyMessage(s string) string {
	return m.style().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4).
		Render(s)
}

// panel frames content and centres it in the play area.
func (m *Model) panel(content string) string {
	box := m.style().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 3).
		Width(min(panelWidth, max(m.config.ScreenW-4, 0))).
		Align(lipgloss.Center).
		Render(content)
	return m.place(box)
}

func (m *Model) place(content string) string {
	w, h := m.config.ScreenW, max(m.config.ScreenH-1, 0)
	if w <= 0 || h <= 0 {
		return content
	}
	if m.renderer != nil {
		return m.renderer.Place(w, h, lipgloss.Center, lipgloss.Center, content)
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}
