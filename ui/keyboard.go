package ui

import "fmt"

// ViewAction is a navigation command for the interactive grid view.
type ViewAction int

const (
	ActionNone ViewAction = iota
	ActionPanLeft
	ActionPanRight
	ActionPanUp
	ActionPanDown
	ActionZoomIn
	ActionZoomOut
	ActionReset
	ActionQuit
)

func (a ViewAction) String() string {
	switch a {
	case ActionPanLeft:
		return "pan left"
	case ActionPanRight:
		return "pan right"
	case ActionPanUp:
		return "pan up"
	case ActionPanDown:
		return "pan down"
	case ActionZoomIn:
		return "zoom in"
	case ActionZoomOut:
		return "zoom out"
	case ActionReset:
		return "reset"
	case ActionQuit:
		return "quit"
	default:
		return "none"
	}
}

// ActionFor maps a key rune to a view action. Arrow keys arrive as h/j/k/l.
func ActionFor(k rune) ViewAction {
	switch k {
	case 'h', 'H', 'a', 'A':
		return ActionPanLeft
	case 'l', 'L', 'd', 'D':
		return ActionPanRight
	case 'k', 'K', 'w', 'W':
		return ActionPanUp
	case 'j', 'J', 's', 'S':
		return ActionPanDown
	case '+', '=':
		return ActionZoomIn
	case '-', '_':
		return ActionZoomOut
	case 'r', 'R', '0':
		return ActionReset
	case 'q', 'Q', 27:
		return ActionQuit
	default:
		return ActionNone
	}
}

// NextViewAction shows the key help and blocks until a mapped key arrives.
func NextViewAction() ViewAction {
	fmt.Printf("\033[32m%s\033[0m\n", "arrows/hjkl pan, +/- zoom, r reset, q or <ESC> quit")
	keyEvents := StartKeyEvents()
	for k := range keyEvents {
		if a := ActionFor(k); a != ActionNone {
			return a
		}
	}
	return ActionQuit
}
