// Package viewer is the client-side session façade: it resolves a host
// address or tunnel URL, opens the video and command connections and owns
// their lifecycle.
package viewer

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"glimpse/internal/command"
	"glimpse/internal/shared/constants"
	"glimpse/internal/tunnel"

	"go.uber.org/zap"
)

// ErrAlreadyConnected is returned by Connect on a live viewer.
var ErrAlreadyConnected = errors.New("viewer already connected")

// Endpoints are the two resolved dial targets of one session.
type Endpoints struct {
	VideoAddr   string
	CommandAddr string
}

// ResolveAddress turns what the user typed into dialable endpoints. It
// accepts a bare host, a host:port pair, or a tunnel URL (tcp, http or
// https). The command port defaults to the video port plus one; pass
// commandPort > 0 when the two channels are tunneled to different public
// ports.
func ResolveAddress(address string, commandPort int) (Endpoints, error) {
	var host string
	var videoPort int

	switch {
	case tunnel.HasScheme(address):
		ep, err := tunnel.ParseURL(address)
		if err != nil {
			return Endpoints{}, err
		}
		host, videoPort = ep.Host, ep.Port

	case strings.Contains(address, ":"):
		h, p, err := net.SplitHostPort(address)
		if err != nil {
			return Endpoints{}, fmt.Errorf("invalid address %q: %w", address, err)
		}
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Endpoints{}, fmt.Errorf("invalid port in address %q", address)
		}
		host, videoPort = h, port

	default:
		if address == "" {
			return Endpoints{}, fmt.Errorf("empty address")
		}
		host, videoPort = address, constants.DefaultVideoPort
	}

	if commandPort <= 0 {
		commandPort = videoPort + constants.CommandPortOffset
	}

	return Endpoints{
		VideoAddr:   net.JoinHostPort(host, strconv.Itoa(videoPort)),
		CommandAddr: net.JoinHostPort(host, strconv.Itoa(commandPort)),
	}, nil
}

// Viewer is one viewing session.
type Viewer struct {
	logger   *zap.Logger
	callback FrameCallback

	stream  *StreamClient
	control *ControlClient
}

// New creates a disconnected viewer delivering frames to callback.
func New(callback FrameCallback, logger *zap.Logger) *Viewer {
	return &Viewer{callback: callback, logger: logger}
}

// Connect resolves address and opens both channels. The video connection
// failing is fatal; a command connection failure closes the session again,
// both sockets or none.
func (v *Viewer) Connect(address string, commandPort int) error {
	if v.stream != nil && v.stream.Running() {
		return ErrAlreadyConnected
	}

	eps, err := ResolveAddress(address, commandPort)
	if err != nil {
		return err
	}

	videoConn, err := net.DialTimeout("tcp", eps.VideoAddr, constants.DialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect video channel %s: %w", eps.VideoAddr, err)
	}

	commandConn, err := net.DialTimeout("tcp", eps.CommandAddr, constants.DialTimeout)
	if err != nil {
		_ = videoConn.Close()
		return fmt.Errorf("failed to connect command channel %s: %w", eps.CommandAddr, err)
	}

	v.stream = newStreamClient(videoConn, v.callback, v.logger)
	v.control = newControlClient(commandConn, v.logger)

	v.logger.Info("Connected",
		zap.String("video_addr", eps.VideoAddr),
		zap.String("command_addr", eps.CommandAddr),
	)
	return nil
}

// Connected reports whether the video channel is live.
func (v *Viewer) Connected() bool {
	return v.stream != nil && v.stream.Running()
}

// Done is closed when the video stream ends. Returns a closed channel on a
// never-connected viewer.
func (v *Viewer) Done() <-chan struct{} {
	if v.stream == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return v.stream.Done()
}

// SendCommand transmits one remote-control command.
func (v *Viewer) SendCommand(cmd command.Command) error {
	if v.control == nil {
		return ErrNotConnected
	}
	return v.control.Send(cmd)
}

// Disconnect closes both channels. Idempotent.
func (v *Viewer) Disconnect() {
	if v.control != nil {
		v.control.Close()
	}
	if v.stream != nil {
		v.stream.Close()
	}
	v.logger.Info("Disconnected")
}
