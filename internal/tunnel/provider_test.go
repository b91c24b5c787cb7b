package tunnel

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// fakeAgent mimics the local tunnel agent HTTP API.
type fakeAgent struct {
	mu        sync.Mutex
	rejectTCP bool
	deleted   []string
}

func (a *fakeAgent) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/tunnels", func(w http.ResponseWriter, r *http.Request) {
		var req agentTunnelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		a.mu.Lock()
		reject := a.rejectTCP && req.Proto == "tcp"
		a.mu.Unlock()

		if reject {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(agentErrorResponse{
				Msg: "failed to start tunnel: Your account is limited to HTTP; TCP endpoints require a credit card",
			})
			return
		}

		resp := agentTunnelResponse{Name: req.Name}
		if req.Proto == "tcp" {
			resp.PublicURL = "tcp://0.tcp.example.io:12345"
		} else {
			resp.PublicURL = "https://" + req.Name + ".example.io"
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("DELETE /api/tunnels/{name}", func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.deleted = append(a.deleted, r.PathValue("name"))
		a.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestAgentProviderOpenTCP(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent.handler())
	defer srv.Close()

	p := NewAgentProvider(srv.URL)
	url, handle, err := p.Open(5000, ProtocolTCP, "video")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if url != "tcp://0.tcp.example.io:12345" {
		t.Errorf("url = %q", url)
	}
	if handle != "video" {
		t.Errorf("handle = %q, want video", handle)
	}
}

func TestAgentProviderClassifiesCapabilityRejection(t *testing.T) {
	agent := &fakeAgent{rejectTCP: true}
	srv := httptest.NewServer(agent.handler())
	defer srv.Close()

	p := NewAgentProvider(srv.URL)
	_, _, err := p.Open(5000, ProtocolTCP, "video")
	if !IsCapabilityLimit(err) {
		t.Errorf("err = %v, want a capability limit error", err)
	}
}

func TestAgentProviderClose(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent.handler())
	defer srv.Close()

	p := NewAgentProvider(srv.URL)
	if err := p.Close("video"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if len(agent.deleted) != 1 || agent.deleted[0] != "video" {
		t.Errorf("deleted = %v, want [video]", agent.deleted)
	}
}

func TestAgentProviderCloseMissingTunnel(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	p := NewAgentProvider(srv.URL)
	if err := p.Close("gone"); err != nil {
		t.Errorf("Close of missing tunnel = %v, want nil", err)
	}
}

func TestManagerWithAgentProviderFallback(t *testing.T) {
	agent := &fakeAgent{rejectTCP: true}
	srv := httptest.NewServer(agent.handler())
	defer srv.Close()

	m := NewManager(NewAgentProvider(srv.URL), zap.NewNop())
	url, err := m.Start(5000, "video", ProtocolTCP, true)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if url != "https://video.example.io" {
		t.Errorf("url = %q, want the HTTP fallback URL", url)
	}
}
