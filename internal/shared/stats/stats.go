package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// StreamStats accumulates host-side streaming counters. All adders are
// lock-free; UpdateSpeed computes a windowed throughput for display.
type StreamStats struct {
	framesSent int64
	bytesOut   int64
	viewers    int64

	lastBytesOut int64
	lastTime     time.Time
	speedMu      sync.Mutex
	speedOut     int64

	startTime time.Time
}

func NewStreamStats() *StreamStats {
	now := time.Now()
	return &StreamStats{startTime: now, lastTime: now}
}

func (s *StreamStats) AddFrame() {
	atomic.AddInt64(&s.framesSent, 1)
}

// AddBytes records wire-level output, frame headers included.
func (s *StreamStats) AddBytes(n int64) {
	atomic.AddInt64(&s.bytesOut, n)
}

func (s *StreamStats) IncViewers() {
	atomic.AddInt64(&s.viewers, 1)
}

func (s *StreamStats) DecViewers() {
	for {
		old := atomic.LoadInt64(&s.viewers)
		if old <= 0 {
			return
		}
		if atomic.CompareAndSwapInt64(&s.viewers, old, old-1) {
			return
		}
	}
}

func (s *StreamStats) FramesSent() int64 {
	return atomic.LoadInt64(&s.framesSent)
}

func (s *StreamStats) BytesOut() int64 {
	return atomic.LoadInt64(&s.bytesOut)
}

func (s *StreamStats) Viewers() int64 {
	return atomic.LoadInt64(&s.viewers)
}

func (s *StreamStats) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// UpdateSpeed recomputes the outgoing throughput over the window since the
// previous call. Calls closer than 100ms apart are ignored.
func (s *StreamStats) UpdateSpeed() {
	s.speedMu.Lock()
	defer s.speedMu.Unlock()

	now := time.Now()
	elapsed := now.Sub(s.lastTime).Seconds()
	if elapsed < 0.1 {
		return
	}

	current := atomic.LoadInt64(&s.bytesOut)
	delta := current - s.lastBytesOut
	if delta > 0 {
		s.speedOut = int64(float64(delta) / elapsed)
	} else {
		s.speedOut = 0
	}

	s.lastBytesOut = current
	s.lastTime = now
}

// SpeedOut returns the most recently computed throughput in bytes/sec.
func (s *StreamStats) SpeedOut() int64 {
	s.speedMu.Lock()
	defer s.speedMu.Unlock()
	return s.speedOut
}
