package diag

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Ping sends count echo probes to host through the OS ping utility and
// reports success with the average round-trip time. The whole invocation is
// bounded by timeout; expiry counts as unreachable, not as a fault.
func Ping(host string, count int, timeout time.Duration) PingResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	countFlag := "-c"
	if runtime.GOOS == "windows" {
		countFlag = "-n"
	}

	out, err := exec.CommandContext(ctx, "ping", countFlag, strconv.Itoa(count), host).Output()
	if err != nil {
		return PingResult{}
	}

	return PingResult{Success: true, RTT: parseAverageRTT(string(out))}
}

// parseAverageRTT extracts the average round-trip time from ping output.
// Unix prints "rtt min/avg/max/mdev = 0.4/0.5/0.7/0.1 ms"; Windows prints
// "Average = 5ms". A parse failure leaves the RTT at zero.
func parseAverageRTT(output string) time.Duration {
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "min/avg/max") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				return 0
			}
			fields := strings.Split(strings.TrimSpace(parts[1]), "/")
			if len(fields) < 2 {
				return 0
			}
			if avg, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err == nil {
				return time.Duration(avg * float64(time.Millisecond))
			}
			return 0
		}
		if idx := strings.Index(line, "Average"); idx != -1 {
			rest := line[idx+len("Average"):]
			rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "="))
			rest = strings.TrimSpace(strings.TrimSuffix(rest, "ms"))
			if avg, err := strconv.ParseFloat(rest, 64); err == nil {
				return time.Duration(avg * float64(time.Millisecond))
			}
			return 0
		}
	}
	return 0
}
