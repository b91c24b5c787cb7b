package netutil

import "strings"

// IsClosedError checks if an error message indicates an ordinary connection
// teardown rather than a fault. These are logged at debug level and treated
// as a normal exit signal by connection loops.
func IsClosedError(errStr string) bool {
	return strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "use of closed network connection")
}

// IsTimeoutError checks if an error message indicates an i/o timeout.
func IsTimeoutError(errStr string) bool {
	return strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}
