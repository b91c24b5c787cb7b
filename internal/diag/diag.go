// Package diag probes reachability of a streaming host and turns the raw
// signals into actionable recommendations. It is run by the viewer side
// before or around connecting, never by the host.
package diag

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/netutil"

	"go.uber.org/zap"
)

// PingResult is the outcome of the echo probe.
type PingResult struct {
	Success bool
	RTT     time.Duration
}

// Report is one diagnostics run. It is computed fresh per invocation and
// never mutated afterward.
type Report struct {
	Host              string
	LocalIP           string
	Ping              PingResult
	Ports             map[int]bool
	Recommendations   []string
	FirewallSuspected bool
}

// Prober runs reachability diagnostics. The probe functions are fields so
// tests can substitute them; zero-value fields get working defaults.
type Prober struct {
	PingFunc    func(host string) PingResult
	PortTimeout time.Duration
	logger      *zap.Logger
}

// NewProber returns a Prober using the OS ping utility and real TCP
// connects.
func NewProber(logger *zap.Logger) *Prober {
	return &Prober{
		PingFunc:    func(host string) PingResult { return Ping(host, constants.PingCount, constants.PingTimeout) },
		PortTimeout: constants.PortProbeTimeout,
		logger:      logger,
	}
}

// CheckPort reports whether a TCP connect to host:port succeeds within
// timeout. A timeout counts as closed, not as an error.
func CheckPort(host string, port int, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Run probes ping and per-port TCP reachability against host and derives
// recommendations from the results.
func (p *Prober) Run(host string, ports []int) *Report {
	pingFn := p.PingFunc
	if pingFn == nil {
		pingFn = func(host string) PingResult { return Ping(host, constants.PingCount, constants.PingTimeout) }
	}
	timeout := p.PortTimeout
	if timeout <= 0 {
		timeout = constants.PortProbeTimeout
	}
	logger := p.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &Report{
		Host:    host,
		LocalIP: netutil.LocalIP(),
		Ports:   make(map[int]bool, len(ports)),
	}

	report.Ping = pingFn(host)
	logger.Debug("Ping probe finished",
		zap.String("host", host),
		zap.Bool("success", report.Ping.Success),
		zap.Duration("rtt", report.Ping.RTT),
	)

	if !report.Ping.Success {
		report.Recommendations = append(report.Recommendations,
			"Cannot ping the host. Check that both computers are on the same network.")
		report.FirewallSuspected = true
	}

	sorted := append([]int(nil), ports...)
	sort.Ints(sorted)
	for _, port := range sorted {
		open := CheckPort(host, port, timeout)
		report.Ports[port] = open
		logger.Debug("Port probe finished", zap.Int("port", port), zap.Bool("open", open))

		if !open {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Port %d is closed. Check your firewall settings and make sure this port is allowed.", port))
			report.FirewallSuspected = true
		}
	}

	if report.FirewallSuspected {
		report.Recommendations = append(report.Recommendations,
			"Consider temporarily disabling your firewall for testing, or add an exception for glimpse.",
			"If you're on a corporate or school network, try tunneling with the --tunnel flag on the host.")
	}

	return report
}
