//go:build !linux && !darwin && !windows

package tuning

func getSystemTotalMemory() uint64 {
	return fallbackMemory
}
