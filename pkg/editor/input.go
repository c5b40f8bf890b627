package editor

import (
	"fmt"

	"github.com/chazu/nodegraph/pkg/geom"
)

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Modifiers is a set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether any modifier in mask is held.
func (m Modifiers) Has(mask Modifiers) bool { return m&mask != 0 }

// PointerEvent is a press, motion or release at a screen position.
type PointerEvent struct {
	Pos    geom.Vec // screen pixels, relative to the canvas
	Button Button   // ignored for motion
	Mods   Modifiers
}

// Key identifies the keys the editor reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyDelete
	KeyBackspace
	KeyA
	KeyC
	KeyV
	KeyD
	KeyF
	KeyG
	KeyH
	KeyS
)

// ParseKey maps a DOM-style key name to a Key.
func ParseKey(name string) Key {
	switch name {
	case "Escape", "Esc":
		return KeyEscape
	case "Delete", "Del":
		return KeyDelete
	case "Backspace":
		return KeyBackspace
	case "a", "A":
		return KeyA
	case "c", "C":
		return KeyC
	case "v", "V":
		return KeyV
	case "d", "D":
		return KeyD
	case "f", "F":
		return KeyF
	case "g", "G":
		return KeyG
	case "h", "H":
		return KeyH
	case "s", "S":
		return KeyS
	default:
		return KeyUnknown
	}
}

// Mode is the interaction state.
type Mode int

const (
	Idle Mode = iota
	Panning
	RubberBandSelecting
	DraggingNodes
	ConnectingFromSocket
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case RubberBandSelecting:
		return "rubber-band"
	case DraggingNodes:
		return "dragging"
	case ConnectingFromSocket:
		return "connecting"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
