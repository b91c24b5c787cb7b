// Package capture acquires raster images of the local displays. Pixel
// buffers are always *image.RGBA with a fixed channel order, so the encoder
// never branches on pixel layout.
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

var (
	// ErrInvalidTarget is returned when a display index is out of range.
	ErrInvalidTarget = errors.New("invalid capture target")

	// ErrNoDisplays is returned when no capture target exists at all.
	ErrNoDisplays = errors.New("no displays available")
)

// Target describes one capturable display.
type Target struct {
	Index  int
	Bounds image.Rectangle
}

// Width and Height report the target's pixel dimensions.
func (t Target) Width() int  { return t.Bounds.Dx() }
func (t Target) Height() int { return t.Bounds.Dy() }

// Region is an optional sub-rectangle of the selected target, in the
// target's coordinate space.
type Region struct {
	Left, Top, Width, Height int
}

// Source captures frames from one selected display. Safe for use from a
// single producer goroutine; SelectTarget may be called concurrently.
type Source struct {
	mu      sync.Mutex
	current int
	logger  *zap.Logger

	// OS hooks, substitutable in tests.
	captureRect   func(image.Rectangle) (*image.RGBA, error)
	displayBounds func(int) image.Rectangle
	numDisplays   func() int
}

// NewSource returns a Source capturing the primary display.
func NewSource(logger *zap.Logger) *Source {
	return &Source{
		logger:        logger,
		captureRect:   screenshot.CaptureRect,
		displayBounds: screenshot.GetDisplayBounds,
		numDisplays:   screenshot.NumActiveDisplays,
	}
}

// ListTargets enumerates the available displays in index order.
func ListTargets() []Target {
	n := screenshot.NumActiveDisplays()
	targets := make([]Target, 0, n)
	for i := 0; i < n; i++ {
		targets = append(targets, Target{Index: i, Bounds: screenshot.GetDisplayBounds(i)})
	}
	return targets
}

// SelectTarget switches capture to the display at index.
func (s *Source) SelectTarget(index int) error {
	if index < 0 || index >= s.numDisplays() {
		return fmt.Errorf("%w: display %d", ErrInvalidTarget, index)
	}
	s.mu.Lock()
	s.current = index
	s.mu.Unlock()
	s.logger.Info("Capture target selected", zap.Int("display", index))
	return nil
}

// Target reports the currently selected display index.
func (s *Source) Target() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Capture grabs one frame of the selected display, or of region within it
// when region is non-nil. A transient failure is retried once after
// re-reading the display bounds, which re-acquires the capture handle after
// a display reconnect; a second failure surfaces to the caller.
func (s *Source) Capture(region *Region) (*image.RGBA, error) {
	s.mu.Lock()
	display := s.current
	s.mu.Unlock()

	if s.numDisplays() == 0 {
		return nil, ErrNoDisplays
	}

	bounds := s.captureBounds(display, region)
	img, err := s.captureRect(bounds)
	if err == nil {
		return img, nil
	}

	s.logger.Warn("Capture failed, retrying once",
		zap.Int("display", display),
		zap.Error(err),
	)

	bounds = s.captureBounds(display, region)
	img, retryErr := s.captureRect(bounds)
	if retryErr != nil {
		return nil, fmt.Errorf("capture failed after retry: %w", retryErr)
	}
	return img, nil
}

func (s *Source) captureBounds(display int, region *Region) image.Rectangle {
	bounds := s.displayBounds(display)
	if region == nil {
		return bounds
	}
	return image.Rect(
		bounds.Min.X+region.Left,
		bounds.Min.Y+region.Top,
		bounds.Min.X+region.Left+region.Width,
		bounds.Min.Y+region.Top+region.Height,
	)
}
