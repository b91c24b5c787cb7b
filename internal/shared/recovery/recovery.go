// Package recovery tracks panics recovered at subsystem boundaries. The
// input bindings call into C and an occasional panic there is survivable,
// but a sustained panic rate means the session is injecting garbage and
// the operator should know.
package recovery

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	recordCap     = 100
	alertWindow   = 5 * time.Minute
	alertPerMin   = 2.0
	alertCooldown = time.Minute
)

// Record is one recovered panic.
type Record struct {
	Location  string
	Timestamp time.Time
	Value     interface{}
	Stack     string
}

// Tracker accumulates recovered panics and logs an alert when their rate
// climbs past alertPerMin within the window.
type Tracker struct {
	total     uint64
	mu        sync.Mutex
	recent    []Record
	lastAlert time.Time
	logger    *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	return &Tracker{
		recent: make([]Record, 0, recordCap),
		logger: logger,
	}
}

// Recovered records one recovered panic. Safe from any goroutine.
func (t *Tracker) Recovered(location string, value interface{}) {
	atomic.AddUint64(&t.total, 1)

	t.mu.Lock()
	t.recent = append(t.recent, Record{
		Location:  location,
		Timestamp: time.Now(),
		Value:     value,
		Stack:     string(debug.Stack()),
	})
	if len(t.recent) > recordCap {
		t.recent = t.recent[1:]
	}
	rate := t.rateLocked()
	alert := rate >= alertPerMin && time.Since(t.lastAlert) > alertCooldown
	if alert {
		t.lastAlert = time.Now()
	}
	t.mu.Unlock()

	t.logger.Warn("Recovered panic",
		zap.String("location", location),
		zap.Any("panic", value),
	)

	if alert {
		t.logger.Error("High panic rate, input injection is unreliable",
			zap.Uint64("total", atomic.LoadUint64(&t.total)),
			zap.Float64("rate_per_minute", rate),
		)
	}
}

// Total returns the number of panics recovered so far.
func (t *Tracker) Total() uint64 {
	return atomic.LoadUint64(&t.total)
}

func (t *Tracker) rateLocked() float64 {
	threshold := time.Now().Add(-alertWindow)
	count := 0
	for i := len(t.recent) - 1; i >= 0; i-- {
		if !t.recent[i].Timestamp.After(threshold) {
			break
		}
		count++
	}
	return float64(count) / alertWindow.Minutes()
}
