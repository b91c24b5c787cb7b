// Package tuning sizes the Go runtime for the two process roles. Hosting
// re-allocates a full-screen pixel buffer every capture cycle, so the host
// gets a higher GC percent and a larger soft memory limit than a viewer.
package tuning

import (
	"runtime"
	"runtime/debug"
)

// fallbackMemory stands in when the platform probe fails.
const fallbackMemory = 1024 * 1024 * 1024

type Mode int

const (
	ModeViewer Mode = iota
	ModeHost
)

type Config struct {
	GCPercent   int
	MemoryLimit int64
}

func ViewerConfig() Config {
	total := int64(getSystemTotalMemory())
	limit := total / 4
	if limit < 64*1024*1024 {
		limit = 64 * 1024 * 1024
	}
	return Config{
		GCPercent:   100,
		MemoryLimit: limit,
	}
}

func HostConfig() Config {
	total := int64(getSystemTotalMemory())
	limit := total / 2
	if limit < 128*1024*1024 {
		limit = 128 * 1024 * 1024
	}
	return Config{
		GCPercent:   200,
		MemoryLimit: limit,
	}
}

func Apply(cfg Config) {
	runtime.GOMAXPROCS(runtime.NumCPU())
	if cfg.GCPercent > 0 {
		debug.SetGCPercent(cfg.GCPercent)
	}
	if cfg.MemoryLimit > 0 {
		debug.SetMemoryLimit(cfg.MemoryLimit)
	}
}

func ApplyMode(mode Mode) {
	switch mode {
	case ModeHost:
		Apply(HostConfig())
	case ModeViewer:
		Apply(ViewerConfig())
	}
}
