//go:build darwin

package tuning

import (
	"syscall"
	"unsafe"
)

func getSystemTotalMemory() uint64 {
	// sysctl hw.memsize
	mib := [2]int32{6, 24}
	var total uint64
	size := unsafe.Sizeof(total)

	_, _, errno := syscall.Syscall6(
		syscall.SYS___SYSCTL,
		uintptr(unsafe.Pointer(&mib[0])),
		2,
		uintptr(unsafe.Pointer(&total)),
		uintptr(unsafe.Pointer(&size)),
		0,
		0,
	)
	if errno != 0 {
		return fallbackMemory
	}
	return total
}
