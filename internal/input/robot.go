package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"

	"glimpse/internal/shared/recovery"
)

// Robot is the production Executor backed by robotgo. Every method wraps a
// single OS input primitive; failures are converted to errors, including
// panics from the underlying C bindings.
type Robot struct {
	logger *zap.Logger
	panics *recovery.Tracker
}

// NewRobot returns an Executor injecting real OS input events.
func NewRobot(logger *zap.Logger) *Robot {
	w, h := robotgo.GetScreenSize()
	logger.Info("Input executor initialized",
		zap.Int("screen_width", w),
		zap.Int("screen_height", h),
	)
	return &Robot{
		logger: logger,
		panics: recovery.NewTracker(logger),
	}
}

// guard converts a panic out of the robotgo bindings into an error.
func (r *Robot) guard(op string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.panics.Recovered(op, rec)
			err = fmt.Errorf("%s panicked: %v", op, rec)
		}
	}()
	return fn()
}

func (r *Robot) MouseMove(x, y int, relative bool) error {
	return r.guard("mouse move", func() error {
		if relative {
			robotgo.MoveRelative(x, y)
		} else {
			robotgo.Move(x, y)
		}
		return nil
	})
}

func (r *Robot) MouseClick(button string, double bool) error {
	return r.guard("mouse click", func() error {
		robotgo.Click(button, double)
		return nil
	})
}

func (r *Robot) MouseDown(button string) error {
	return r.guard("mouse down", func() error {
		return robotgo.Toggle(button, "down")
	})
}

func (r *Robot) MouseUp(button string) error {
	return r.guard("mouse up", func() error {
		return robotgo.Toggle(button, "up")
	})
}

func (r *Robot) MouseScroll(clicks int) error {
	return r.guard("mouse scroll", func() error {
		robotgo.Scroll(0, clicks)
		return nil
	})
}

func (r *Robot) KeyPress(key string) error {
	return r.guard("key press", func() error {
		return robotgo.KeyTap(key)
	})
}

func (r *Robot) KeyDown(key string) error {
	return r.guard("key down", func() error {
		return robotgo.KeyToggle(key, "down")
	})
}

func (r *Robot) KeyUp(key string) error {
	return r.guard("key up", func() error {
		return robotgo.KeyToggle(key, "up")
	})
}

func (r *Robot) TypeText(text string) error {
	return r.guard("type text", func() error {
		robotgo.TypeStr(text)
		return nil
	})
}

// Hotkey presses an ordered key set together. robotgo takes the main key
// first and modifiers after, while the wire order is modifiers first, so
// the last key is the tap target.
func (r *Robot) Hotkey(keys []string) error {
	return r.guard("hotkey", func() error {
		if len(keys) == 0 {
			return nil
		}
		main := keys[len(keys)-1]
		mods := make([]interface{}, 0, len(keys)-1)
		for _, k := range keys[:len(keys)-1] {
			mods = append(mods, k)
		}
		return robotgo.KeyTap(main, mods...)
	})
}
