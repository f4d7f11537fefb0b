package core

// Action is a logical game action, abstracted from physical key presses,
// touches and clicks.
type Action int

const (
	ActionNone      Action = iota
	ActionChopLeft         // A, Left arrow, pointer on the left half
	ActionChopRight        // D, Right arrow, pointer on the right half
	ActionAnyKey           // any other key
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionChopLeft:
		return "ChopLeft"
	case ActionChopRight:
		return "ChopRight"
	case ActionAnyKey:
		return "AnyKey"
	default:
		return "Unknown"
	}
}

// KeyEvent is a raw keyboard event.
// Code is the physical key ("KeyA", "ArrowLeft"), Key is the produced
// value ("a", "left"). Either may be empty.
type KeyEvent struct {
	Code   string
	Key    string
	Repeat bool
}

// Target identifies what a pointer event landed on.
type Target int

const (
	TargetScene  Target = iota // the play area
	TargetButton               // an interactive control
	TargetInput                // a text field
)

// PointerEvent is a raw mouse click or touch.
// X is relative to the viewport's left edge.
type PointerEvent struct {
	X             float64
	ViewportWidth float64
	Target        Target
}

// InputMapper translates raw device events into logical actions.
// Only the first press of a held key counts and controls swallow
// their own clicks.
type InputMapper struct {
	leftKeys  map[string]bool
	rightKeys map[string]bool

	// TextFocus is set while a text field owns the keyboard.
	TextFocus bool
}

// NewInputMapper creates a mapper with the default chop bindings.
func NewInputMapper() *InputMapper {
	return &InputMapper{
		leftKeys: map[string]bool{
			"ArrowLeft": true, "KeyA": true, "a": true, "A": true, "left": true,
		},
		rightKeys: map[string]bool{
			"ArrowRight": true, "KeyD": true, "d": true, "D": true, "right": true,
		},
	}
}

// MapKey translates a keyboard event.
func (m *InputMapper) MapKey(ev KeyEvent) Action {
	if m.TextFocus || ev.Repeat {
		return ActionNone
	}
	switch {
	case m.leftKeys[ev.Code] || m.leftKeys[ev.Key]:
		return ActionChopLeft
	case m.rightKeys[ev.Code] || m.rightKeys[ev.Key]:
		return ActionChopRight
	default:
		return ActionAnyKey
	}
}

// MapPointer translates a click or touch by which half of the viewport
// it landed on.
func (m *InputMapper) MapPointer(ev PointerEvent) Action {
	if ev.Target != TargetScene {
		return ActionNone
	}
	if ev.X < ev.ViewportWidth/2 {
		return ActionChopLeft
	}
	return ActionChopRight
}
