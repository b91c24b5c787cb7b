package stream

import (
	"net"

	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/netutil"
	"glimpse/internal/shared/protocol"

	"golang.org/x/time/rate"
)

// subscriber is one viewer connection. It owns its frame queue and its
// pacing limiter; neither is shared with other viewers.
type subscriber struct {
	id      string
	conn    net.Conn
	frames  chan []byte
	limiter *rate.Limiter
}

// newSubscriber wraps conn so every written byte, frame headers included,
// is reported through onWrite.
func newSubscriber(conn net.Conn, fps int, onWrite func(int64)) *subscriber {
	return &subscriber{
		id:      conn.RemoteAddr().String(),
		conn:    netutil.NewCountingConn(conn, nil, onWrite),
		frames:  make(chan []byte, constants.SubscriberQueueSize),
		limiter: rate.NewLimiter(fpsLimit(fps), 1),
	}
}

func (sub *subscriber) write(payload []byte) error {
	return protocol.WriteFrame(sub.conn, payload)
}

func fpsLimit(fps int) rate.Limit {
	if fps < constants.MinFPSLimit {
		fps = constants.MinFPSLimit
	}
	return rate.Limit(fps)
}
