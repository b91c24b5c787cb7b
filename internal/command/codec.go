package command

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Decode failures. A failed decode drops the one command; it never
// terminates the connection it arrived on.
var (
	ErrUnknownType   = errors.New("unknown command type")
	ErrMissingParams = errors.New("missing required command params")
)

type envelope struct {
	Type   Type            `json:"type"`
	Params json.RawMessage `json:"params"`
}

// Encode serializes a command to its single-line JSON form, without the
// trailing newline delimiter (the transport appends it).
func Encode(cmd Command) ([]byte, error) {
	params, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", cmd.CommandType(), err)
	}
	return json.Marshal(envelope{Type: cmd.CommandType(), Params: params})
}

// Decode parses one encoded command. An unrecognized type discriminator or
// a structurally invalid payload yields an error and no command; required
// fields must be present, a variant is never partially applied.
func Decode(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed command: %w", err)
	}
	if len(env.Params) == 0 {
		return nil, fmt.Errorf("%w: no params object", ErrMissingParams)
	}

	switch env.Type {
	case TypeMouseMove:
		var p struct {
			X        *int `json:"x"`
			Y        *int `json:"y"`
			Relative bool `json:"relative"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.X == nil || p.Y == nil {
			return nil, fmt.Errorf("%w: %s needs x and y", ErrMissingParams, env.Type)
		}
		return MouseMove{X: *p.X, Y: *p.Y, Relative: p.Relative}, nil

	case TypeMouseClick:
		var p struct {
			Button *string `json:"button"`
			Double bool    `json:"double"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.Button == nil {
			return nil, fmt.Errorf("%w: %s needs button", ErrMissingParams, env.Type)
		}
		return MouseClick{Button: *p.Button, Double: p.Double}, nil

	case TypeMouseDown, TypeMouseUp:
		var p struct {
			Button *string `json:"button"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.Button == nil {
			return nil, fmt.Errorf("%w: %s needs button", ErrMissingParams, env.Type)
		}
		if env.Type == TypeMouseDown {
			return MouseDown{Button: *p.Button}, nil
		}
		return MouseUp{Button: *p.Button}, nil

	case TypeMouseScroll:
		var p struct {
			Clicks *int `json:"clicks"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.Clicks == nil {
			return nil, fmt.Errorf("%w: %s needs clicks", ErrMissingParams, env.Type)
		}
		return MouseScroll{Clicks: *p.Clicks}, nil

	case TypeKeyPress, TypeKeyDown, TypeKeyUp:
		var p struct {
			Key *string `json:"key"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.Key == nil || *p.Key == "" {
			return nil, fmt.Errorf("%w: %s needs key", ErrMissingParams, env.Type)
		}
		switch env.Type {
		case TypeKeyPress:
			return KeyPress{Key: *p.Key}, nil
		case TypeKeyDown:
			return KeyDown{Key: *p.Key}, nil
		default:
			return KeyUp{Key: *p.Key}, nil
		}

	case TypeTypeText:
		var p struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if p.Text == nil {
			return nil, fmt.Errorf("%w: %s needs text", ErrMissingParams, env.Type)
		}
		return TypeText{Text: *p.Text}, nil

	case TypeHotkey:
		var p struct {
			Keys []string `json:"keys"`
		}
		if err := json.Unmarshal(env.Params, &p); err != nil {
			return nil, fmt.Errorf("malformed %s params: %w", env.Type, err)
		}
		if len(p.Keys) == 0 {
			return nil, fmt.Errorf("%w: %s needs keys", ErrMissingParams, env.Type)
		}
		return Hotkey{Keys: p.Keys}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(env.Type))
	}
}
