// Package input applies decoded remote-control commands to the local OS
// input subsystem.
package input

import (
	"errors"
	"fmt"

	"glimpse/internal/command"
)

// ErrUnknownCommand is returned by Dispatch for a command variant outside
// the known set. Callers log it and continue; it is never fatal.
var ErrUnknownCommand = errors.New("unknown command variant")

// Executor applies one command variant per method. Implementations never
// panic past their boundary; the caller receives an error and logs it.
type Executor interface {
	MouseMove(x, y int, relative bool) error
	MouseClick(button string, double bool) error
	MouseDown(button string) error
	MouseUp(button string) error
	MouseScroll(clicks int) error
	KeyPress(key string) error
	KeyDown(key string) error
	KeyUp(key string) error
	TypeText(text string) error
	Hotkey(keys []string) error
}

// Dispatch routes a decoded command to the matching executor method.
func Dispatch(exec Executor, cmd command.Command) error {
	switch c := cmd.(type) {
	case command.MouseMove:
		return exec.MouseMove(c.X, c.Y, c.Relative)
	case command.MouseClick:
		return exec.MouseClick(c.Button, c.Double)
	case command.MouseDown:
		return exec.MouseDown(c.Button)
	case command.MouseUp:
		return exec.MouseUp(c.Button)
	case command.MouseScroll:
		return exec.MouseScroll(c.Clicks)
	case command.KeyPress:
		return exec.KeyPress(c.Key)
	case command.KeyDown:
		return exec.KeyDown(c.Key)
	case command.KeyUp:
		return exec.KeyUp(c.Key)
	case command.TypeText:
		return exec.TypeText(c.Text)
	case command.Hotkey:
		return exec.Hotkey(c.Keys)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}
