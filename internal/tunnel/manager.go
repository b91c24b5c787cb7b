// Package tunnel manages public forwarding endpoints for the host's local
// ports through an external tunneling provider, with TCP-preferred and
// HTTP-fallback policy.
package tunnel

import (
	"fmt"
	"sync"

	"glimpse/internal/metrics"

	"go.uber.org/zap"
)

// Tunnel is one managed forwarding endpoint, keyed by its logical name.
type Tunnel struct {
	Name      string
	LocalPort int
	Protocol  Protocol
	PublicURL string

	handle string
}

// Manager owns tunnel lifecycle. All methods are safe for concurrent use;
// destruction is idempotent and never panics when a tunnel never started.
type Manager struct {
	provider Provider
	logger   *zap.Logger

	mu      sync.Mutex
	tunnels map[string]*Tunnel
}

// NewManager creates a manager over the given provider.
func NewManager(provider Provider, logger *zap.Logger) *Manager {
	return &Manager{
		provider: provider,
		logger:   logger,
		tunnels:  make(map[string]*Tunnel),
	}
}

// Start opens a tunnel for port under the logical name. If a tunnel with
// that name already exists it is stopped first (idempotent replace). When
// the provider rejects a TCP tunnel for plan/capability reasons and
// fallbackToHTTP is set, the request is retried exactly once with HTTP.
func (m *Manager) Start(port int, name string, proto Protocol, fallbackToHTTP bool) (string, error) {
	if existing := m.Stop(name); existing {
		m.logger.Warn("Tunnel already existed, replaced", zap.String("name", name))
	}

	publicURL, handle, err := m.provider.Open(port, proto, name)
	if err != nil {
		if proto == ProtocolTCP && fallbackToHTTP && IsCapabilityLimit(err) {
			m.logger.Warn("TCP tunnel rejected by provider plan limits, falling back to HTTP",
				zap.String("name", name),
				zap.Error(err),
			)
			metrics.TunnelStarts.WithLabelValues(string(ProtocolTCP), "fallback").Inc()
			proto = ProtocolHTTP
			publicURL, handle, err = m.provider.Open(port, proto, name)
		}
		if err != nil {
			metrics.TunnelStarts.WithLabelValues(string(proto), "error").Inc()
			return "", fmt.Errorf("failed to start tunnel %q: %w", name, err)
		}
	}

	t := &Tunnel{
		Name:      name,
		LocalPort: port,
		Protocol:  proto,
		PublicURL: publicURL,
		handle:    handle,
	}

	m.mu.Lock()
	m.tunnels[name] = t
	m.mu.Unlock()

	metrics.TunnelStarts.WithLabelValues(string(proto), "ok").Inc()
	metrics.TunnelsActive.Inc()
	m.logger.Info("Tunnel started",
		zap.String("name", name),
		zap.Int("port", port),
		zap.String("protocol", string(proto)),
		zap.String("public_url", publicURL),
	)
	return publicURL, nil
}

// Stop tears down the named tunnel. Returns false without error when no
// such tunnel exists.
func (m *Manager) Stop(name string) bool {
	m.mu.Lock()
	t, ok := m.tunnels[name]
	if ok {
		delete(m.tunnels, name)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	metrics.TunnelsActive.Dec()
	if err := m.provider.Close(t.handle); err != nil {
		m.logger.Error("Failed to stop tunnel",
			zap.String("name", name),
			zap.Error(err),
		)
		return true
	}

	m.logger.Info("Tunnel stopped", zap.String("name", name))
	return true
}

// StopAll stops every tunnel, tolerating individual failures.
func (m *Manager) StopAll() {
	m.mu.Lock()
	names := make([]string, 0, len(m.tunnels))
	for name := range m.tunnels {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		m.Stop(name)
	}
}

// Get returns the named tunnel, or nil when absent.
func (m *Manager) Get(name string) *Tunnel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tunnels[name]
}

// PublicURL returns the named tunnel's public URL, or "" when absent.
func (m *Manager) PublicURL(name string) string {
	if t := m.Get(name); t != nil {
		return t.PublicURL
	}
	return ""
}

// Count reports the number of active tunnels.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tunnels)
}
