package viewer

import (
	"bufio"
	"image"
	"net"
	"sync"
	"sync/atomic"

	"glimpse/internal/encode"
	"glimpse/internal/shared/netutil"
	"glimpse/internal/shared/protocol"

	"go.uber.org/zap"
)

// FrameCallback receives each decoded frame in arrival order. It runs on
// the receive goroutine; a slow callback slows frame consumption but a
// panicking callback never kills the receive loop.
type FrameCallback func(img image.Image)

// StreamClient receives the video channel of one host connection.
type StreamClient struct {
	conn     net.Conn
	callback FrameCallback
	logger   *zap.Logger

	running atomic.Bool
	done    chan struct{}
	once    sync.Once
}

func newStreamClient(conn net.Conn, callback FrameCallback, logger *zap.Logger) *StreamClient {
	c := &StreamClient{
		conn:     conn,
		callback: callback,
		logger:   logger,
		done:     make(chan struct{}),
	}
	c.running.Store(true)
	go c.receiveLoop()
	return c
}

// Running reports whether the receive loop is still alive.
func (c *StreamClient) Running() bool {
	return c.running.Load()
}

// Done is closed when the receive loop exits.
func (c *StreamClient) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down and waits for the loop to finish.
func (c *StreamClient) Close() {
	c.once.Do(func() { _ = c.conn.Close() })
	<-c.done
}

func (c *StreamClient) receiveLoop() {
	defer close(c.done)
	defer c.running.Store(false)
	defer c.once.Do(func() { _ = c.conn.Close() })

	reader := bufio.NewReader(c.conn)
	for {
		payload, err := protocol.ReadFrame(reader)
		if err != nil {
			// Connection closed by peer or local teardown ends the loop;
			// a corrupt length prefix also lands here, since framing
			// alignment cannot be recovered.
			if netutil.IsClosedError(err.Error()) {
				c.logger.Debug("Video stream ended", zap.Error(err))
			} else {
				c.logger.Warn("Video stream failed", zap.Error(err))
			}
			return
		}

		img, err := encode.DecodeFrame(payload)
		if err != nil {
			c.logger.Warn("Dropping undecodable frame",
				zap.Int("payload_bytes", len(payload)),
				zap.Error(err),
			)
			continue
		}

		c.deliver(img)
	}
}

// deliver invokes the frame callback, isolating panics so a viewer-side
// display bug cannot crash the receive loop.
func (c *StreamClient) deliver(img image.Image) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Frame callback panicked", zap.Any("panic", r))
		}
	}()
	if c.callback != nil {
		c.callback(img)
	}
}
