package tunnel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"glimpse/internal/shared/constants"
)

// Protocol selects how a tunnel forwards traffic.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolHTTP Protocol = "http"
)

// Provider is the external tunneling service boundary. Open requests a
// public forwarding endpoint for a local port; Close tears one down by the
// handle Open returned.
type Provider interface {
	Open(port int, proto Protocol, name string) (publicURL, handle string, err error)
	Close(handle string) error
}

// CapabilityError marks a provider rejection caused by plan or capability
// limits (for example TCP endpoints requiring a paid plan), as opposed to a
// transient failure. The manager uses it to decide on HTTP fallback.
type CapabilityError struct {
	Msg string
}

func (e *CapabilityError) Error() string { return e.Msg }

// IsCapabilityLimit reports whether err is a plan/capability rejection.
func IsCapabilityLimit(err error) bool {
	var ce *CapabilityError
	return errors.As(err, &ce)
}

// AgentProvider opens tunnels through the local tunnel agent's HTTP API
// (the ngrok agent listens on 127.0.0.1:4040 by default).
type AgentProvider struct {
	baseURL string
	client  *http.Client
}

// NewAgentProvider returns a provider talking to the agent at baseURL, or
// the default local agent address when baseURL is empty.
func NewAgentProvider(baseURL string) *AgentProvider {
	if baseURL == "" {
		baseURL = constants.DefaultAgentURL
	}
	return &AgentProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: constants.AgentAPITimeout},
	}
}

type agentTunnelRequest struct {
	Name  string `json:"name"`
	Addr  string `json:"addr"`
	Proto string `json:"proto"`
}

type agentTunnelResponse struct {
	Name      string `json:"name"`
	PublicURL string `json:"public_url"`
}

type agentErrorResponse struct {
	Msg       string `json:"msg"`
	ErrorCode int    `json:"error_code"`
	Details   struct {
		Err string `json:"err"`
	} `json:"details"`
}

func (p *AgentProvider) Open(port int, proto Protocol, name string) (string, string, error) {
	body, err := json.Marshal(agentTunnelRequest{
		Name:  name,
		Addr:  strconv.Itoa(port),
		Proto: string(proto),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tunnel request: %w", err)
	}

	resp, err := p.client.Post(p.baseURL+"/api/tunnels", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("tunnel agent unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "", fmt.Errorf("failed to read tunnel agent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", p.openError(resp.StatusCode, data)
	}

	var tr agentTunnelResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return "", "", fmt.Errorf("malformed tunnel agent response: %w", err)
	}
	if tr.PublicURL == "" {
		return "", "", fmt.Errorf("tunnel agent returned no public URL")
	}
	return tr.PublicURL, tr.Name, nil
}

// openError classifies a non-2xx agent response. Rejections mentioning TCP
// endpoint availability are capability limits eligible for HTTP fallback.
func (p *AgentProvider) openError(status int, data []byte) error {
	var ae agentErrorResponse
	msg := string(data)
	if err := json.Unmarshal(data, &ae); err == nil {
		if ae.Details.Err != "" {
			msg = ae.Details.Err
		} else if ae.Msg != "" {
			msg = ae.Msg
		}
	}

	if strings.Contains(msg, "TCP endpoints") {
		return &CapabilityError{Msg: msg}
	}
	return fmt.Errorf("tunnel agent rejected request (status %d): %s", status, msg)
}

func (p *AgentProvider) Close(handle string) error {
	req, err := http.NewRequest(http.MethodDelete, p.baseURL+"/api/tunnels/"+handle, nil)
	if err != nil {
		return fmt.Errorf("failed to build tunnel delete request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("tunnel agent unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// 404 means the tunnel is already gone, which is the desired state.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("tunnel agent delete failed with status %d", resp.StatusCode)
	}
	return nil
}
