package netutil

import (
	"net"
	"time"
)

// LocalIP reports the IPv4 address of the default route interface. It opens
// an outbound UDP socket toward a public address; no packet is actually
// sent, the kernel just picks the source address it would use.
func LocalIP() string {
	conn, err := net.DialTimeout("udp", "8.8.8.8:80", 2*time.Second)
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}

// ExtractRemoteIP extracts the IP address from a remote address string
// (host:port format).
func ExtractRemoteIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// IsLoopback reports whether addr is bound to a loopback interface. Used to
// warn when the control listener is reachable from other machines.
func IsLoopback(host string) bool {
	if host == "" || host == "localhost" {
		return host == "localhost"
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
