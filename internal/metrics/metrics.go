package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Streaming metrics
	ActiveViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "glimpse_active_viewers",
		Help: "Current number of connected viewer connections",
	})

	FramesCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_frames_captured_total",
		Help: "Total number of screen frames captured",
	})

	CaptureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_capture_failures_total",
		Help: "Total number of failed capture cycles",
	})

	FramesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_frames_sent_total",
		Help: "Total number of frames written to viewer connections",
	})

	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_frames_dropped_total",
		Help: "Total number of frames dropped for lagging viewers",
	})

	BytesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_bytes_sent_total",
		Help: "Total frame payload bytes written to viewers",
	})

	// Command channel metrics
	CommandsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_commands_dispatched_total",
		Help: "Total number of remote-control commands dispatched",
	}, []string{"type"})

	CommandDecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_command_decode_failures_total",
		Help: "Total number of malformed commands dropped",
	})

	CommandFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "glimpse_command_failures_total",
		Help: "Total number of commands whose injection failed",
	})

	// Tunnel metrics
	TunnelsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "glimpse_tunnels_active",
		Help: "Current number of active public tunnels",
	})

	TunnelStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glimpse_tunnel_starts_total",
		Help: "Total number of tunnel start attempts",
	}, []string{"protocol", "result"})
)
