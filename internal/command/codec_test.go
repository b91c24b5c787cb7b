package command

import (
	"errors"
	"reflect"
	"testing"
)

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"mouse move absolute", MouseMove{X: 100, Y: 200}},
		{"mouse move relative", MouseMove{X: -5, Y: 12, Relative: true}},
		{"mouse click", MouseClick{Button: ButtonLeft}},
		{"mouse double click", MouseClick{Button: ButtonRight, Double: true}},
		{"mouse down", MouseDown{Button: ButtonMiddle}},
		{"mouse up", MouseUp{Button: ButtonLeft}},
		{"scroll up", MouseScroll{Clicks: 3}},
		{"scroll down", MouseScroll{Clicks: -2}},
		{"key press", KeyPress{Key: "enter"}},
		{"key down", KeyDown{Key: "shift"}},
		{"key up", KeyUp{Key: "shift"}},
		{"type text", TypeText{Text: "hello, world"}},
		{"type empty text", TypeText{Text: ""}},
		{"hotkey", Hotkey{Keys: []string{"ctrl", "alt", "delete"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.cmd)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.cmd) {
				t.Errorf("round trip = %#v, want %#v", got, tt.cmd)
			}
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	tests := []string{
		`{"type":0,"params":{}}`,
		`{"type":99,"params":{}}`,
		`{"type":-1,"params":{}}`,
	}

	for _, raw := range tests {
		cmd, err := Decode([]byte(raw))
		if !errors.Is(err, ErrUnknownType) {
			t.Errorf("Decode(%s) err = %v, want ErrUnknownType", raw, err)
		}
		if cmd != nil {
			t.Errorf("Decode(%s) = %#v, want nil", raw, cmd)
		}
	}
}

func TestDecodeMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"mouse move without y", `{"type":1,"params":{"x":10}}`},
		{"mouse click without button", `{"type":2,"params":{"double":true}}`},
		{"mouse down without button", `{"type":3,"params":{}}`},
		{"scroll without clicks", `{"type":5,"params":{}}`},
		{"key press without key", `{"type":6,"params":{}}`},
		{"key press empty key", `{"type":6,"params":{"key":""}}`},
		{"type text without text", `{"type":9,"params":{}}`},
		{"hotkey without keys", `{"type":10,"params":{}}`},
		{"hotkey empty keys", `{"type":10,"params":{"keys":[]}}`},
		{"no params object", `{"type":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.raw))
			if !errors.Is(err, ErrMissingParams) {
				t.Errorf("err = %v, want ErrMissingParams", err)
			}
			if cmd != nil {
				t.Errorf("cmd = %#v, want nil", cmd)
			}
		})
	}
}

func TestDecodeMalformedJSON(t *testing.T) {
	tests := []string{
		``,
		`not json`,
		`{"type":"one","params":{}}`,
		`{"type":1,"params":{"x":"ten","y":5}}`,
	}

	for _, raw := range tests {
		cmd, err := Decode([]byte(raw))
		if err == nil {
			t.Errorf("Decode(%q) succeeded, want error", raw)
		}
		if cmd != nil {
			t.Errorf("Decode(%q) = %#v, want nil", raw, cmd)
		}
	}
}

func TestTypeString(t *testing.T) {
	if got := TypeMouseMove.String(); got != "MouseMove" {
		t.Errorf("TypeMouseMove.String() = %q", got)
	}
	if got := Type(42).String(); got != "Unknown(42)" {
		t.Errorf("Type(42).String() = %q", got)
	}
}
