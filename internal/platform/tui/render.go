package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/timber/internal/core"
)

type cellStyle struct {
	fg, bg core.Color
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape
// sequences. r selects the colour profile; nil means the default
// renderer.
func RenderScreen(r *lipgloss.Renderer, s *core.Screen) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	styles := make(map[cellStyle]lipgloss.Style)
	styleFor := func(k cellStyle) lipgloss.Style {
		if st, ok := styles[k]; ok {
			return st
		}
		st := r.NewStyle()
		if k.fg != core.ColorDefault {
			st = st.Foreground(lipgloss.Color(string(k.fg)))
		}
		if k.bg != core.ColorDefault {
			st = st.Background(lipgloss.Color(string(k.bg)))
		}
		styles[k] = st
		return st
	}

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*4 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)
			k := cellStyle{fg: start.FG, bg: start.BG}

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.FG != k.fg || cell.BG != k.bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}
			sb.WriteString(styleFor(k).Render(run.String()))
		}
	}
	return sb.String()
}
