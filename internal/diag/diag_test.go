package diag

import (
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// reservePort opens and immediately closes a listener so the port is very
// likely closed for the duration of the test.
func reservePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}

func openPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()
	return l.Addr().(*net.TCPAddr).Port
}

func TestCheckPort(t *testing.T) {
	open := openPort(t)
	closed := reservePort(t)

	if !CheckPort("127.0.0.1", open, time.Second) {
		t.Errorf("port %d should be open", open)
	}
	if CheckPort("127.0.0.1", closed, time.Second) {
		t.Errorf("port %d should be closed", closed)
	}
}

func TestRunMixedPorts(t *testing.T) {
	open := openPort(t)
	closed := reservePort(t)

	p := NewProber(zap.NewNop())
	p.PingFunc = func(host string) PingResult {
		return PingResult{Success: true, RTT: 3 * time.Millisecond}
	}
	p.PortTimeout = time.Second

	report := p.Run("127.0.0.1", []int{open, closed})

	if !report.Ports[open] {
		t.Errorf("port %d reported closed", open)
	}
	if report.Ports[closed] {
		t.Errorf("port %d reported open", closed)
	}
	if !report.FirewallSuspected {
		t.Error("FirewallSuspected should be true with a closed port")
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations for the closed port")
	}

	found := false
	want := "Port " + strconv.Itoa(closed)
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, want) {
			found = true
		}
	}
	if !found {
		t.Errorf("no recommendation names the closed port; got %v", report.Recommendations)
	}
}

func TestRunAllHealthy(t *testing.T) {
	open := openPort(t)

	p := NewProber(zap.NewNop())
	p.PingFunc = func(host string) PingResult {
		return PingResult{Success: true, RTT: time.Millisecond}
	}
	p.PortTimeout = time.Second

	report := p.Run("127.0.0.1", []int{open})

	if report.FirewallSuspected {
		t.Error("FirewallSuspected should be false when everything is reachable")
	}
	if len(report.Recommendations) != 0 {
		t.Errorf("Recommendations = %v, want none", report.Recommendations)
	}
	if report.LocalIP == "" {
		t.Error("LocalIP should be populated")
	}
}

func TestRunPingFailure(t *testing.T) {
	p := NewProber(zap.NewNop())
	p.PingFunc = func(host string) PingResult { return PingResult{} }
	p.PortTimeout = 100 * time.Millisecond

	report := p.Run("203.0.113.1", nil)

	if !report.FirewallSuspected {
		t.Error("FirewallSuspected should be true when ping fails")
	}
	if len(report.Recommendations) == 0 {
		t.Error("expected recommendations for unreachable host")
	}
}

func TestParseAverageRTT(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   time.Duration
	}{
		{
			name:   "linux",
			output: "rtt min/avg/max/mdev = 0.045/0.052/0.061/0.007 ms",
			want:   52 * time.Microsecond,
		},
		{
			name:   "windows",
			output: "    Minimum = 4ms, Maximum = 7ms, Average = 5ms",
			want:   5 * time.Millisecond,
		},
		{
			name:   "no stats line",
			output: "64 bytes from 127.0.0.1: icmp_seq=1 ttl=64",
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseAverageRTT(tt.output); got != tt.want {
				t.Errorf("parseAverageRTT = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZeroValueProberAppliesDefaults(t *testing.T) {
	port := openPort(t)

	// Only PingFunc is set; logger and PortTimeout stay zero values.
	p := &Prober{
		PingFunc: func(host string) PingResult {
			return PingResult{Success: true, RTT: time.Millisecond}
		},
	}

	report := p.Run("127.0.0.1", []int{port})
	if !report.Ports[port] {
		t.Errorf("port %d reported closed, want open", port)
	}
	if report.FirewallSuspected {
		t.Error("FirewallSuspected should be false with everything reachable")
	}
}
