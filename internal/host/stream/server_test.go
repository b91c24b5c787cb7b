package stream

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"net"
	"testing"
	"time"

	"glimpse/internal/encode"
	"glimpse/internal/shared/protocol"

	"go.uber.org/zap"
)

// solidSource produces fixed-size frames and counts capture calls.
type solidSource struct {
	captures chan struct{}
}

func newSolidSource() *solidSource {
	return &solidSource{captures: make(chan struct{}, 1024)}
}

func (s *solidSource) Capture() (image.Image, error) {
	select {
	case s.captures <- struct{}{}:
	default:
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 64, G: 128, B: 192, A: 255})
		}
	}
	return img, nil
}

type failingSource struct {
	fails int
	inner Source
}

func (f *failingSource) Capture() (image.Image, error) {
	if f.fails > 0 {
		f.fails--
		return nil, fmt.Errorf("display went away")
	}
	return f.inner.Capture()
}

func startTestServer(t *testing.T, src Source) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", src, zap.NewNop())
	s.SetFPSLimit(60)
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func readFrames(t *testing.T, conn net.Conn, n int) [][]byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	r := bufio.NewReader(conn)
	frames := make([][]byte, 0, n)
	for i := 0; i < n; i++ {
		payload, err := protocol.ReadFrame(r)
		if err != nil {
			t.Fatalf("ReadFrame #%d failed: %v", i, err)
		}
		frames = append(frames, payload)
	}
	return frames
}

func TestServerStreamsDecodableFrames(t *testing.T) {
	s := startTestServer(t, newSolidSource())

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	frames := readFrames(t, conn, 3)
	for i, payload := range frames {
		img, err := encode.DecodeFrame(payload)
		if err != nil {
			t.Fatalf("frame #%d not decodable: %v", i, err)
		}
		if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
			t.Errorf("frame #%d bounds = %v", i, img.Bounds())
		}
	}
}

func TestTwoViewersPaceIndependently(t *testing.T) {
	s := startTestServer(t, newSolidSource())

	connA, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial A failed: %v", err)
	}
	defer connA.Close()

	connB, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial B failed: %v", err)
	}

	// B connects but never reads; its queue fills and frames get dropped
	// for it. A must keep receiving regardless.
	readFrames(t, connA, 5)

	_ = connB.Close()

	// A continues after B is gone.
	readFrames(t, connA, 3)
}

func TestViewerDisconnectLeavesServerRunning(t *testing.T) {
	s := startTestServer(t, newSolidSource())

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	readFrames(t, conn, 1)
	_ = conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Viewers() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("viewer not removed from active set")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A new viewer can still connect.
	conn2, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("second dial failed: %v", err)
	}
	defer conn2.Close()
	readFrames(t, conn2, 1)
}

func TestCaptureFailureRetriesWithoutClosingConnections(t *testing.T) {
	src := &failingSource{fails: 3, inner: newSolidSource()}
	s := startTestServer(t, src)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Frames arrive once the source recovers; the connection survived the
	// failed cycles.
	readFrames(t, conn, 2)
}

func TestSettingClamps(t *testing.T) {
	s := NewServer("127.0.0.1:0", newSolidSource(), zap.NewNop())

	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{150, 100},
		{50, 50},
	}
	for _, tt := range tests {
		if got := s.SetQuality(tt.in); got != tt.want {
			t.Errorf("SetQuality(%d) = %d, want %d", tt.in, got, tt.want)
		}
		if got := s.Quality(); got != tt.want {
			t.Errorf("Quality() = %d, want %d", got, tt.want)
		}
	}

	if got := s.SetFPSLimit(0); got != 1 {
		t.Errorf("SetFPSLimit(0) = %d, want 1", got)
	}
	if got := s.SetFPSLimit(-10); got != 1 {
		t.Errorf("SetFPSLimit(-10) = %d, want 1", got)
	}
	if got := s.SetFPSLimit(24); got != 24 {
		t.Errorf("SetFPSLimit(24) = %d, want 24", got)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewServer("127.0.0.1:0", newSolidSource(), zap.NewNop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()
	s.Stop() // must not panic or block
}

func TestStopClosesViewerConnections(t *testing.T) {
	s := startTestServer(t, newSolidSource())

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	readFrames(t, conn, 1)

	s.Stop()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	r := bufio.NewReader(conn)
	for i := 0; i < 64; i++ {
		if _, err := protocol.ReadFrame(r); err != nil {
			return // connection was closed by the server
		}
	}
	t.Fatal("connection still delivering frames after Stop")
}

// noiseSource produces a fixed high-entropy frame so compression quality
// has a visible effect on the payload size.
type noiseSource struct {
	img *image.RGBA
}

func newNoiseSource() *noiseSource {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	seed := uint32(2463534242)
	for i := range img.Pix {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		img.Pix[i] = uint8(seed)
	}
	return &noiseSource{img: img}
}

func (s *noiseSource) Capture() (image.Image, error) { return s.img, nil }

func TestQualityChangeAppliesToConnectedViewer(t *testing.T) {
	s := startTestServer(t, newNoiseSource())
	s.SetQuality(90)

	conn, err := net.Dial("tcp", s.Addr().String())
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	avgSize := func(frames [][]byte) int {
		total := 0
		for _, payload := range frames {
			total += len(payload)
		}
		return total / len(frames)
	}

	readFrames(t, conn, 2)
	high := avgSize(readFrames(t, conn, 3))

	s.SetQuality(10)
	// Frames already queued for this viewer still carry the old quality;
	// the subscriber queue holds at most 4.
	readFrames(t, conn, 6)
	low := avgSize(readFrames(t, conn, 3))

	if low >= high {
		t.Errorf("average frame size after lowering quality = %d, want below %d", low, high)
	}
}
