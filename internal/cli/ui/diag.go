package ui

import (
	"fmt"
	"sort"

	"glimpse/internal/diag"
)

// RenderDiagReport renders a connectivity report.
func RenderDiagReport(report *diag.Report) string {
	lines := []string{
		KeyValue("Target", report.Host),
		KeyValue("Local IP", report.LocalIP),
	}

	if report.Ping.Success {
		rtt := "n/a"
		if report.Ping.RTT > 0 {
			rtt = report.Ping.RTT.String()
		}
		lines = append(lines, KeyValue("Ping", Success("reachable")+" "+Muted("avg "+rtt)))
	} else {
		lines = append(lines, KeyValue("Ping", Error("unreachable")))
	}

	ports := make([]int, 0, len(report.Ports))
	for port := range report.Ports {
		ports = append(ports, port)
	}
	sort.Ints(ports)
	for _, port := range ports {
		state := Success("open")
		if !report.Ports[port] {
			state = Error("closed")
		}
		lines = append(lines, KeyValue(fmt.Sprintf("Port %d", port), state))
	}

	if len(report.Recommendations) == 0 {
		return SuccessBox("Connectivity OK", lines...)
	}

	lines = append(lines, "")
	for _, rec := range report.Recommendations {
		lines = append(lines, Muted("• ")+rec)
	}

	title := "Connectivity Issues"
	if report.FirewallSuspected {
		title = "Connectivity Issues (firewall suspected)"
	}
	return WarningBox(title, lines...)
}
