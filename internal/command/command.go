// Package command defines the closed set of remote-control commands carried
// on the command channel and their wire codec. Each command travels as one
// UTF-8 JSON line of the form {"type":<int>,"params":{...}}.
package command

import "fmt"

// Type is the wire discriminator for a command variant.
type Type int

const (
	TypeMouseMove Type = iota + 1
	TypeMouseClick
	TypeMouseDown
	TypeMouseUp
	TypeMouseScroll
	TypeKeyPress
	TypeKeyDown
	TypeKeyUp
	TypeTypeText
	TypeHotkey
)

// String returns the human-readable name of the command type.
func (t Type) String() string {
	switch t {
	case TypeMouseMove:
		return "MouseMove"
	case TypeMouseClick:
		return "MouseClick"
	case TypeMouseDown:
		return "MouseDown"
	case TypeMouseUp:
		return "MouseUp"
	case TypeMouseScroll:
		return "MouseScroll"
	case TypeKeyPress:
		return "KeyPress"
	case TypeKeyDown:
		return "KeyDown"
	case TypeKeyUp:
		return "KeyUp"
	case TypeTypeText:
		return "TypeText"
	case TypeHotkey:
		return "Hotkey"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Button names accepted by the mouse command variants.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Command is a decoded remote-control command. Implementations are immutable
// value types; a command is constructed once and consumed exactly once by
// the input executor.
type Command interface {
	CommandType() Type
}

// MouseMove moves the pointer to (X, Y), or by (X, Y) when Relative is set.
type MouseMove struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Relative bool `json:"relative"`
}

func (MouseMove) CommandType() Type { return TypeMouseMove }

// MouseClick clicks the named button, twice when Double is set.
type MouseClick struct {
	Button string `json:"button"`
	Double bool   `json:"double"`
}

func (MouseClick) CommandType() Type { return TypeMouseClick }

// MouseDown presses and holds the named button.
type MouseDown struct {
	Button string `json:"button"`
}

func (MouseDown) CommandType() Type { return TypeMouseDown }

// MouseUp releases the named button.
type MouseUp struct {
	Button string `json:"button"`
}

func (MouseUp) CommandType() Type { return TypeMouseUp }

// MouseScroll scrolls by Clicks wheel units, positive meaning up.
type MouseScroll struct {
	Clicks int `json:"clicks"`
}

func (MouseScroll) CommandType() Type { return TypeMouseScroll }

// KeyPress taps a key.
type KeyPress struct {
	Key string `json:"key"`
}

func (KeyPress) CommandType() Type { return TypeKeyPress }

// KeyDown presses and holds a key.
type KeyDown struct {
	Key string `json:"key"`
}

func (KeyDown) CommandType() Type { return TypeKeyDown }

// KeyUp releases a key.
type KeyUp struct {
	Key string `json:"key"`
}

func (KeyUp) CommandType() Type { return TypeKeyUp }

// TypeText emits a literal string as keystrokes.
type TypeText struct {
	Text string `json:"text"`
}

func (TypeText) CommandType() Type { return TypeTypeText }

// Hotkey presses an ordered set of keys together, modifiers first.
type Hotkey struct {
	Keys []string `json:"keys"`
}

func (Hotkey) CommandType() Type { return TypeHotkey }
