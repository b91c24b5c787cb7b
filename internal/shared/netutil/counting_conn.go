package netutil

import "net"

// CountingConn reports the bytes moving through a connection. The video
// channel wraps each viewer socket with it so throughput counters see wire
// bytes rather than payload sizes.
type CountingConn struct {
	net.Conn
	onRead  func(int64)
	onWrite func(int64)
}

func NewCountingConn(conn net.Conn, onRead, onWrite func(int64)) *CountingConn {
	return &CountingConn{Conn: conn, onRead: onRead, onWrite: onWrite}
}

func (c *CountingConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 && c.onRead != nil {
		c.onRead(int64(n))
	}
	return n, err
}

func (c *CountingConn) Write(p []byte) (int, error) {
	n, err := c.Conn.Write(p)
	if n > 0 && c.onWrite != nil {
		c.onWrite(int64(n))
	}
	return n, err
}
