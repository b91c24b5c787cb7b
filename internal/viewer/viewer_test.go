package viewer

import (
	"bufio"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"glimpse/internal/command"

	"go.uber.org/zap"
)

func TestResolveAddress(t *testing.T) {
	tests := []struct {
		name        string
		address     string
		commandPort int
		want        Endpoints
		wantErr     bool
	}{
		{
			name:    "bare host",
			address: "192.168.1.20",
			want:    Endpoints{VideoAddr: "192.168.1.20:5000", CommandAddr: "192.168.1.20:5001"},
		},
		{
			name:    "host and port",
			address: "192.168.1.20:6000",
			want:    Endpoints{VideoAddr: "192.168.1.20:6000", CommandAddr: "192.168.1.20:6001"},
		},
		{
			name:    "tcp tunnel url",
			address: "tcp://0.tcp.example.io:12345",
			want:    Endpoints{VideoAddr: "0.tcp.example.io:12345", CommandAddr: "0.tcp.example.io:12346"},
		},
		{
			name:    "https tunnel url defaults to 443",
			address: "https://abc.example.io",
			want:    Endpoints{VideoAddr: "abc.example.io:443", CommandAddr: "abc.example.io:444"},
		},
		{
			name:        "explicit command port",
			address:     "tcp://0.tcp.example.io:12345",
			commandPort: 54321,
			want:        Endpoints{VideoAddr: "0.tcp.example.io:12345", CommandAddr: "0.tcp.example.io:54321"},
		},
		{
			name:    "tcp url without port",
			address: "tcp://0.tcp.example.io",
			wantErr: true,
		},
		{
			name:    "bad port",
			address: "192.168.1.20:notaport",
			wantErr: true,
		},
		{
			name:    "empty",
			address: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAddress(tt.address, tt.commandPort)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveAddress(%q) succeeded, want error", tt.address)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveAddress(%q) failed: %v", tt.address, err)
			}
			if got != tt.want {
				t.Errorf("ResolveAddress(%q) = %+v, want %+v", tt.address, got, tt.want)
			}
		})
	}
}

func TestControlClientSend(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	cc := newControlClient(client, zap.NewNop())
	defer cc.Close()

	lines := make(chan string, 2)
	go func() {
		scanner := bufio.NewScanner(server)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	if err := cc.Send(command.KeyPress{Key: "enter"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	select {
	case line := <-lines:
		cmd, err := command.Decode([]byte(line))
		if err != nil {
			t.Fatalf("host side failed to decode %q: %v", line, err)
		}
		if !reflect.DeepEqual(cmd, command.KeyPress{Key: "enter"}) {
			t.Errorf("decoded %+v, want KeyPress enter", cmd)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no line arrived at the host side")
	}
}

func TestControlClientSendAfterClose(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	cc := newControlClient(client, zap.NewNop())
	cc.Close()

	if err := cc.Send(command.TypeText{Text: "hi"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send after Close = %v, want ErrNotConnected", err)
	}
}

func TestConnectCommandFailureClosesVideo(t *testing.T) {
	// A listener on the video port only; the command port (video+1) stays
	// closed, so Connect must fail and release the video socket.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	v := New(nil, zap.NewNop())
	if err := v.Connect(ln.Addr().String(), 0); err == nil {
		v.Disconnect()
		t.Skip("adjacent port happened to be open")
	}
	if v.Connected() {
		t.Error("viewer reports connected after failed Connect")
	}

	select {
	case conn := <-accepted:
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		buf := make([]byte, 1)
		if _, err := conn.Read(buf); err == nil {
			t.Error("video socket still open after command dial failed")
		}
		conn.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("video connection never reached the listener")
	}
}

func TestDoneOnNeverConnectedViewer(t *testing.T) {
	v := New(nil, zap.NewNop())
	select {
	case <-v.Done():
	default:
		t.Error("Done() on a never-connected viewer should be closed")
	}
}
