package viewer

import (
	"errors"
	"net"
	"sync"

	"glimpse/internal/command"

	"go.uber.org/zap"
)

// ErrNotConnected is returned by Send when the command channel is down.
var ErrNotConnected = errors.New("command channel not connected")

// ControlClient sends remote-control commands on the command channel.
// Writes are serialized: commands apply at the host in send order.
type ControlClient struct {
	mu     sync.Mutex
	conn   net.Conn
	logger *zap.Logger
}

func newControlClient(conn net.Conn, logger *zap.Logger) *ControlClient {
	return &ControlClient{conn: conn, logger: logger}
}

// Send serializes cmd, appends the newline delimiter and writes it. It
// fails loudly when the channel is not connected.
func (c *ControlClient) Send(cmd command.Command) error {
	data, err := command.Encode(cmd)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return ErrNotConnected
	}
	if _, err := c.conn.Write(data); err != nil {
		c.logger.Warn("Command send failed",
			zap.String("type", cmd.CommandType().String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close shuts the command channel down. Subsequent Sends fail with
// ErrNotConnected.
func (c *ControlClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}
