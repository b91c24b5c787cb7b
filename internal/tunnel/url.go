package tunnel

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint is the host/port pair a tunnel URL resolves to.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// HasScheme reports whether raw looks like a tunnel URL rather than a bare
// host or host:port.
func HasScheme(raw string) bool {
	return strings.Contains(raw, "://")
}

// ParseURL resolves a tunnel URL to a dialable endpoint. The rules branch
// on scheme: tcp URLs must carry an explicit port; http defaults to 80 and
// https to 443 when no port is present.
func ParseURL(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid tunnel URL %q: %w", raw, err)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("tunnel URL %q has no host", raw)
	}

	ep := Endpoint{Scheme: u.Scheme, Host: u.Hostname()}

	switch u.Scheme {
	case "tcp":
		if u.Port() == "" {
			return Endpoint{}, fmt.Errorf("tcp tunnel URL %q must carry an explicit port", raw)
		}
	case "http":
		ep.Port = 80
	case "https":
		ep.Port = 443
	default:
		return Endpoint{}, fmt.Errorf("unsupported tunnel URL scheme %q", u.Scheme)
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return Endpoint{}, fmt.Errorf("tunnel URL %q has invalid port %q", raw, p)
		}
		ep.Port = port
	}
	return ep, nil
}

// Address renders the endpoint in host:port form.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
