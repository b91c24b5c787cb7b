package netutil

import "testing"

func TestIsClosedError(t *testing.T) {
	tests := []struct {
		errStr string
		want   bool
	}{
		{"EOF", true},
		{"read tcp 10.0.0.2:5000: connection reset by peer", true},
		{"write tcp 10.0.0.2:5000: broken pipe", true},
		{"accept tcp [::]:5000: use of closed network connection", true},
		{"dial tcp 10.0.0.9:5000: connection refused", true},
		{"read tcp 10.0.0.2:5000: i/o timeout", false},
		{"invalid frame length", false},
	}
	for _, tt := range tests {
		if got := IsClosedError(tt.errStr); got != tt.want {
			t.Errorf("IsClosedError(%q) = %v, want %v", tt.errStr, got, tt.want)
		}
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		errStr string
		want   bool
	}{
		{"read tcp 10.0.0.2:5000: i/o timeout", true},
		{"context deadline exceeded", true},
		{"EOF", false},
		{"connection reset by peer", false},
	}
	for _, tt := range tests {
		if got := IsTimeoutError(tt.errStr); got != tt.want {
			t.Errorf("IsTimeoutError(%q) = %v, want %v", tt.errStr, got, tt.want)
		}
	}
}
