// Package control implements the command channel: a TCP listener reading
// newline-delimited encoded commands from viewers and dispatching them to
// the input executor. The command port is by convention the video port
// plus one.
package control

import (
	"bufio"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"glimpse/internal/command"
	"glimpse/internal/input"
	"glimpse/internal/metrics"
	"glimpse/internal/shared/constants"
	"glimpse/internal/shared/netutil"

	"go.uber.org/zap"
)

// Server is the command channel listener.
type Server struct {
	addr   string
	exec   input.Executor
	logger *zap.Logger

	listener net.Listener
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool

	connMu sync.Mutex
	conns  map[string]net.Conn
}

// NewServer creates a command channel server dispatching to exec.
func NewServer(addr string, exec input.Executor, logger *zap.Logger) *Server {
	return &Server{
		addr:   addr,
		exec:   exec,
		logger: logger,
		conns:  make(map[string]net.Conn),
	}
}

// Start binds the listener and launches the accept loop.
func (s *Server) Start() error {
	if s.running.Load() {
		return fmt.Errorf("command channel already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind command listener on %s: %w", s.addr, err)
	}

	s.listener = listener
	s.stopCh = make(chan struct{})
	s.running.Store(true)

	s.logger.Info("Command channel started",
		zap.String("address", listener.Addr().String()),
	)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and all command connections. Idempotent.
func (s *Server) Stop() {
	if !s.running.Swap(false) {
		return
	}

	close(s.stopCh)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	s.connMu.Lock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	s.logger.Info("Command channel stopped")
}

// Addr reports the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

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
				s.logger.Error("Failed to accept command connection", zap.Error(err))
				continue
			}
		}

		connID := conn.RemoteAddr().String()
		s.connMu.Lock()
		s.conns[connID] = conn
		s.connMu.Unlock()

		s.logger.Info("Command connection opened",
			zap.String("remote_addr", connID),
			zap.String("remote_ip", netutil.ExtractRemoteIP(connID)),
		)

		s.wg.Add(1)
		go s.handleConnection(conn, connID)
	}
}

func (s *Server) handleConnection(conn net.Conn, connID string) {
	defer s.wg.Done()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, connID)
		s.connMu.Unlock()
		_ = conn.Close()
		s.logger.Info("Command connection closed", zap.String("remote_addr", connID))
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), constants.MaxCommandLine)

	for scanner.Scan() {
		select {
		case <-s.stopCh:
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		cmd, err := command.Decode(line)
		if err != nil {
			// One malformed command never terminates the connection.
			metrics.CommandDecodeFailures.Inc()
			s.logger.Warn("Dropping malformed command",
				zap.String("remote_addr", connID),
				zap.Error(err),
			)
			continue
		}

		metrics.CommandsDispatched.WithLabelValues(cmd.CommandType().String()).Inc()
		if err := input.Dispatch(s.exec, cmd); err != nil {
			metrics.CommandFailures.Inc()
			s.logger.Warn("Command injection failed",
				zap.String("type", cmd.CommandType().String()),
				zap.Error(err),
			)
		}
	}

	if err := scanner.Err(); err != nil {
		if netutil.IsClosedError(err.Error()) || netutil.IsTimeoutError(err.Error()) {
			s.logger.Debug("Command connection read ended", zap.Error(err))
		} else {
			s.logger.Warn("Command connection read failed", zap.Error(err))
		}
	}
}
