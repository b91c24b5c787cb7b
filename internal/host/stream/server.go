// Package stream implements the video channel: a TCP listener whose
// connected viewers each receive a paced stream of length-prefixed
// compressed frames. One broadcaster goroutine captures and encodes each
// frame once and fans it out to every subscriber, so capture work does not
// multiply with the viewer count.
package stream

import (
	"context"
	"fmt"
	"image"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"glimpse/internal/encode"
	"glimpse/internal/metrics"
	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/netutil"
	"glimpse/internal/shared/stats"

	"go.uber.org/zap"
)

// Source produces one pixel buffer per capture cycle.
type Source interface {
	Capture() (image.Image, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() (image.Image, error)

func (f SourceFunc) Capture() (image.Image, error) { return f() }

// Server is the video channel listener.
type Server struct {
	addr   string
	src    Source
	logger *zap.Logger
	stats  *stats.StreamStats

	settingsMu sync.RWMutex
	quality    int
	fps        int

	subMu sync.Mutex
	subs  map[string]*subscriber

	listener net.Listener
	stopCh   chan struct{}
	cancel   context.CancelFunc
	ctx      context.Context
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewServer creates a video channel server bound to addr on Start.
func NewServer(addr string, src Source, logger *zap.Logger) *Server {
	return &Server{
		addr:    addr,
		src:     src,
		logger:  logger,
		stats:   stats.NewStreamStats(),
		quality: constants.DefaultQuality,
		fps:     constants.DefaultFPSLimit,
		subs:    make(map[string]*subscriber),
	}
}

// Start binds the listener and launches the accept and broadcast loops.
// A bind failure is fatal and surfaces to the caller.
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("video channel already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind video listener on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.stopCh = make(chan struct{})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running.Store(true)

	s.logger.Info("Video channel started",
		zap.String("address", listener.Addr().String()),
		zap.Int("quality", s.Quality()),
		zap.Int("fps_limit", s.FPSLimit()),
	)

	s.wg.Add(2)
	go s.acceptLoop()
	go s.broadcastLoop()
	return nil
}

// Stop closes the listener and every viewer connection, then waits for all
// loops to exit. Idempotent.
func (s *Server) Stop() {
	if !s.running.Swap(false) {
		return
	}

	close(s.stopCh)
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.subMu.Lock()
	for _, sub := range s.subs {
		_ = sub.conn.Close()
	}
	s.subMu.Unlock()

	s.wg.Wait()
	s.logger.Info("Video channel stopped")
}

// Addr reports the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// SetQuality clamps and applies the JPEG quality. Takes effect on the next
// broadcast cycle for every connected viewer.
func (s *Server) SetQuality(quality int) int {
	q := encode.ClampQuality(quality)
	s.settingsMu.Lock()
	s.quality = q
	s.settingsMu.Unlock()
	s.logger.Info("Stream quality set", zap.Int("quality", q))
	return q
}

// Quality reports the current JPEG quality.
func (s *Server) Quality() int {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.quality
}

// SetFPSLimit applies the frame rate ceiling, floored at 1.
func (s *Server) SetFPSLimit(fps int) int {
	if fps < constants.MinFPSLimit {
		fps = constants.MinFPSLimit
	}
	s.settingsMu.Lock()
	s.fps = fps
	s.settingsMu.Unlock()
	s.logger.Info("FPS limit set", zap.Int("fps", fps))
	return fps
}

// FPSLimit reports the current frame rate ceiling.
func (s *Server) FPSLimit() int {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.fps
}

// Viewers reports the number of connected viewer connections.
func (s *Server) Viewers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// Stats exposes the streaming counters for display.
func (s *Server) Stats() *stats.StreamStats {
	return s.stats
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		// Accept deadline lets the loop observe the stop channel.
		if tcpListener, ok := s.listener.(*net.TCPListener); ok {
			_ = tcpListener.SetDeadline(time.Now().Add(constants.AcceptPollInterval))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-s.stopCh:
				return
			default:
				s.logger.Error("Failed to accept viewer connection", zap.Error(err))
				continue
			}
		}

		sub := newSubscriber(conn, s.FPSLimit(), func(n int64) {
			s.stats.AddBytes(n)
			metrics.BytesSent.Add(float64(n))
		})

		s.subMu.Lock()
		s.subs[sub.id] = sub
		s.subMu.Unlock()

		s.stats.IncViewers()
		metrics.ActiveViewers.Inc()
		s.logger.Info("Viewer connected",
			zap.String("remote_addr", sub.id),
			zap.String("remote_ip", netutil.ExtractRemoteIP(sub.id)),
		)

		s.wg.Add(1)
		go s.serveSubscriber(sub)
	}
}

func (s *Server) removeSubscriber(sub *subscriber) {
	s.subMu.Lock()
	_, present := s.subs[sub.id]
	delete(s.subs, sub.id)
	s.subMu.Unlock()

	_ = sub.conn.Close()
	if present {
		s.stats.DecViewers()
		metrics.ActiveViewers.Dec()
		s.logger.Info("Viewer disconnected", zap.String("remote_addr", sub.id))
	}
}

func (s *Server) serveSubscriber(sub *subscriber) {
	defer s.wg.Done()
	defer s.removeSubscriber(sub)

	for {
		select {
		case <-s.stopCh:
			return
		case payload := <-sub.frames:
			// Pacing state is connection-scoped: each viewer has its own
			// limiter, so one slow viewer never stalls another.
			sub.limiter.SetLimit(fpsLimit(s.FPSLimit()))
			if err := sub.limiter.Wait(s.ctx); err != nil {
				return
			}

			if err := sub.write(payload); err != nil {
				if netutil.IsClosedError(err.Error()) || netutil.IsTimeoutError(err.Error()) {
					s.logger.Debug("Viewer write ended", zap.String("remote_addr", sub.id), zap.Error(err))
				} else {
					s.logger.Warn("Viewer write failed", zap.String("remote_addr", sub.id), zap.Error(err))
				}
				return
			}

			s.stats.AddFrame()
			metrics.FramesSent.Inc()
		}
	}
}

// broadcastLoop is the single capture+encode producer. Each cycle reads the
// current quality and FPS settings, captures once, encodes once, and fans
// the payload out to every subscriber queue.
func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		if s.Viewers() == 0 {
			s.sleep(constants.IdlePollInterval)
			continue
		}

		started := time.Now()
		interval := time.Second / time.Duration(s.FPSLimit())

		img, err := s.src.Capture()
		if err != nil {
			metrics.CaptureFailures.Inc()
			s.logger.Warn("Screen capture failed", zap.Error(err))
			s.sleep(constants.CaptureRetryBackoff)
			continue
		}
		metrics.FramesCaptured.Inc()

		payload, err := encode.JPEG(img, s.Quality())
		if err != nil {
			s.logger.Error("Frame encode failed, frame dropped", zap.Error(err))
			continue
		}

		s.subMu.Lock()
		for _, sub := range s.subs {
			select {
			case sub.frames <- payload:
			default:
				// Queue full: the viewer is lagging, drop this frame for it.
				metrics.FramesDropped.Inc()
			}
		}
		s.subMu.Unlock()

		if remaining := interval - time.Since(started); remaining > 0 {
			s.sleep(remaining)
		}
	}
}

// sleep waits for d or until the server stops, whichever is first.
func (s *Server) sleep(d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-s.stopCh:
	case <-timer.C:
	}
}
