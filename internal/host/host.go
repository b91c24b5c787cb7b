// Package host ties one sharing session together: the video channel
// server, the command channel server on the next port, and optionally a
// pair of public tunnels in front of them.
package host

import (
	"fmt"
	"net"
	"strconv"
	"sync/atomic"

	"glimpse/internal/host/control"
	"glimpse/internal/host/stream"
	"glimpse/internal/input"
	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/netutil"
	"glimpse/internal/shared/stats"
	"glimpse/internal/tunnel"

	"go.uber.org/zap"
)

// Options configure a session before Start.
type Options struct {
	// BindHost is the interface to listen on. Empty means all interfaces.
	BindHost string
	// Port is the video channel port; the command channel listens on
	// Port+1.
	Port int
	// Quality is the initial compression quality, clamped to [0,100].
	Quality int
	// FPSLimit is the initial frame rate ceiling, floor 1.
	FPSLimit int
	// Tunnel opens public tunnels for both channels on Start.
	Tunnel bool
}

// Host is one running sharing session.
type Host struct {
	opts   Options
	logger *zap.Logger

	stream  *stream.Server
	control *control.Server
	tunnels *tunnel.Manager

	running atomic.Bool
}

// New assembles a session from a frame source, an input executor and an
// optional tunnel manager. tunnels may be nil when Options.Tunnel is off.
func New(src stream.Source, exec input.Executor, tunnels *tunnel.Manager, opts Options, logger *zap.Logger) *Host {
	if opts.Port <= 0 {
		opts.Port = constants.DefaultVideoPort
	}
	videoAddr := net.JoinHostPort(opts.BindHost, strconv.Itoa(opts.Port))
	commandAddr := net.JoinHostPort(opts.BindHost, strconv.Itoa(opts.Port+constants.CommandPortOffset))

	h := &Host{
		opts:    opts,
		logger:  logger,
		stream:  stream.NewServer(videoAddr, src, logger),
		control: control.NewServer(commandAddr, exec, logger),
		tunnels: tunnels,
	}
	h.stream.SetQuality(opts.Quality)
	h.stream.SetFPSLimit(opts.FPSLimit)
	return h
}

// Start brings up both listeners, then the tunnels when requested. Either
// listener failing tears the session back down, so a started host always
// has both channels live.
func (h *Host) Start() error {
	if !h.running.CompareAndSwap(false, true) {
		return nil
	}

	if err := h.stream.Start(); err != nil {
		h.running.Store(false)
		return fmt.Errorf("failed to start video channel: %w", err)
	}
	if err := h.control.Start(); err != nil {
		h.stream.Stop()
		h.running.Store(false)
		return fmt.Errorf("failed to start command channel: %w", err)
	}

	if h.opts.BindHost == "" || !netutil.IsLoopback(h.opts.BindHost) {
		h.logger.Warn("Listening on a non-loopback interface without authentication; anyone who can reach these ports can watch and control this machine",
			zap.Int("video_port", h.opts.Port),
			zap.Int("command_port", h.opts.Port+constants.CommandPortOffset),
		)
	}

	if h.opts.Tunnel {
		if err := h.startTunnels(); err != nil {
			h.shutdown()
			h.running.Store(false)
			return err
		}
	}

	h.logger.Info("Session started",
		zap.String("video_addr", h.stream.Addr().String()),
		zap.String("command_addr", h.control.Addr().String()),
	)
	return nil
}

func (h *Host) startTunnels() error {
	if h.tunnels == nil {
		return fmt.Errorf("tunneling requested but no tunnel provider is configured")
	}

	videoURL, err := h.tunnels.Start(h.opts.Port, constants.TunnelNameVideo, tunnel.ProtocolTCP, true)
	if err != nil {
		return fmt.Errorf("failed to open video tunnel: %w", err)
	}
	commandURL, err := h.tunnels.Start(h.opts.Port+constants.CommandPortOffset, constants.TunnelNameCommand, tunnel.ProtocolTCP, true)
	if err != nil {
		h.tunnels.Stop(constants.TunnelNameVideo)
		return fmt.Errorf("failed to open command tunnel: %w", err)
	}

	h.logger.Info("Tunnels established",
		zap.String("video_url", videoURL),
		zap.String("command_url", commandURL),
	)
	return nil
}

// Stop tears the session down. Idempotent.
func (h *Host) Stop() {
	if !h.running.CompareAndSwap(true, false) {
		return
	}
	h.shutdown()
	h.logger.Info("Session stopped")
}

func (h *Host) shutdown() {
	if h.tunnels != nil {
		h.tunnels.StopAll()
	}
	h.control.Stop()
	h.stream.Stop()
}

// Running reports whether Start succeeded and Stop has not been called.
func (h *Host) Running() bool {
	return h.running.Load()
}

// SetQuality changes the compression quality for subsequent frames and
// returns the clamped value.
func (h *Host) SetQuality(quality int) int {
	return h.stream.SetQuality(quality)
}

// SetFPSLimit changes the frame rate ceiling for subsequent frames and
// returns the applied value.
func (h *Host) SetFPSLimit(fps int) int {
	return h.stream.SetFPSLimit(fps)
}

// Viewers returns the number of connected viewers.
func (h *Host) Viewers() int {
	return h.stream.Viewers()
}

// Stats exposes the session's streaming counters.
func (h *Host) Stats() *stats.StreamStats {
	return h.stream.Stats()
}

// VideoAddr returns the bound video listener address, or nil before Start.
func (h *Host) VideoAddr() net.Addr {
	return h.stream.Addr()
}

// CommandAddr returns the bound command listener address, or nil before
// Start.
func (h *Host) CommandAddr() net.Addr {
	return h.control.Addr()
}

// PublicVideoURL returns the video tunnel URL, empty when not tunneled.
func (h *Host) PublicVideoURL() string {
	if h.tunnels == nil {
		return ""
	}
	return h.tunnels.PublicURL(constants.TunnelNameVideo)
}

// PublicCommandURL returns the command tunnel URL, empty when not tunneled.
func (h *Host) PublicCommandURL() string {
	if h.tunnels == nil {
		return ""
	}
	return h.tunnels.PublicURL(constants.TunnelNameCommand)
}
