package constants

import "time"

const (
	// DefaultVideoPort is the default port for the video channel listener.
	DefaultVideoPort = 5000

	// CommandPortOffset is added to the video port to derive the command
	// channel port when the caller does not supply one explicitly.
	CommandPortOffset = 1

	// ==================== Streaming Defaults ====================

	// DefaultQuality is the default JPEG compression quality (0-100).
	DefaultQuality = 50

	// DefaultFPSLimit is the default maximum frames per second per viewer.
	DefaultFPSLimit = 30

	// MinFPSLimit is the floor for the FPS setting.
	MinFPSLimit = 1

	// SubscriberQueueSize is the per-viewer frame queue depth. When a
	// viewer falls behind, newer frames are dropped rather than buffered
	// without bound.
	SubscriberQueueSize = 4

	// CaptureRetryBackoff is how long the broadcaster waits after a failed
	// screen capture before trying again.
	CaptureRetryBackoff = 100 * time.Millisecond

	// IdlePollInterval is how often the broadcaster checks for new viewers
	// while nobody is connected.
	IdlePollInterval = 250 * time.Millisecond

	// ==================== Networking ====================

	// AcceptPollInterval is the accept deadline used so listener loops can
	// observe the stop channel.
	AcceptPollInterval = 1 * time.Second

	// DialTimeout is the timeout for outbound viewer connections.
	DialTimeout = 5 * time.Second

	// MaxCommandLine is the largest accepted encoded command line.
	MaxCommandLine = 64 * 1024

	// ==================== Diagnostics ====================

	// PortProbeTimeout is the TCP connect timeout used per port probe.
	PortProbeTimeout = 2 * time.Second

	// PingCount is the number of echo probes sent per diagnostics run.
	PingCount = 4

	// PingTimeout bounds the whole ping invocation.
	PingTimeout = 10 * time.Second

	// ==================== Tunneling ====================

	// TunnelNameVideo and TunnelNameCommand key the two managed tunnels.
	TunnelNameVideo   = "video"
	TunnelNameCommand = "command"

	// AgentAPITimeout bounds requests to the local tunnel agent API.
	AgentAPITimeout = 15 * time.Second

	// DefaultAgentURL is the local tunnel agent API endpoint.
	DefaultAgentURL = "http://127.0.0.1:4040"
)
