package tui

import (
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/timber/internal/core"
)

// KeyEventFromMsg converts a Bubble Tea key message into the raw event
// the input mapper understands. Terminals do not report key repeat, so
// Repeat is always false.
func KeyEventFromMsg(msg tea.KeyMsg) core.KeyEvent {
	ev := core.KeyEvent{Key: msg.String()}
	switch msg.Type {
	case tea.KeyLeft:
		ev.Code = "ArrowLeft"
	case tea.KeyRight:
		ev.Code = "ArrowRight"
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			switch unicode.ToLower(msg.Runes[0]) {
			case 'a':
				ev.Code = "KeyA"
			case 'd':
				ev.Code = "KeyD"
			}
		}
	}
	return ev
}

// PointerEventFromMsg converts a left click into a pointer event.
// It returns false for anything else (motion, wheel, release).
func PointerEventFromMsg(msg tea.MouseMsg, width int, target core.Target) (core.PointerEvent, bool) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return core.PointerEvent{}, false
	}
	return core.PointerEvent{
		X:             float64(msg.X),
		ViewportWidth: float64(width),
		Target:        target,
	}, true
}

// KeyMap holds the platform key bindings. Chop keys are resolved by
// core.InputMapper; Chop here only feeds the help bar.
type KeyMap struct {
	Chop        key.Binding
	Start       key.Binding
	Submit      key.Binding
	Leaderboard key.Binding
	PlayAgain   key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Mute        key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Chop: key.NewBinding(
			key.WithKeys("left", "a", "right", "d"),
			key.WithHelp("←/→ a/d", "chop"),
		),
		Start: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("any key", "start"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Leaderboard: key.NewBinding(
			key.WithKeys("tab", "l"),
			key.WithHelp("tab", "leaderboard"),
		),
		PlayAgain: key.NewBinding(
			key.WithKeys("enter", " ", "r"),
			key.WithHelp("enter/r", "play again"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "title"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// screenHelp adapts a binding list to help.KeyMap.
type screenHelp []key.Binding

func (h screenHelp) ShortHelp() []key.Binding { return h }

func (h screenHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h} }
