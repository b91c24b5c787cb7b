// Package encode compresses captured pixel buffers into frame payloads and
// decodes them back on the viewer side. One JPEG image per frame; there is
// no inter-frame prediction.
package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"glimpse/internal/shared/pool"
)

// ClampQuality corrects a quality setting into the valid [0,100] range.
// Invalid input is corrected rather than rejected.
func ClampQuality(quality int) int {
	if quality < 0 {
		return 0
	}
	if quality > 100 {
		return 100
	}
	return quality
}

// JPEG compresses img at the given quality, clamped to [0,100]. The
// returned slice is owned by the caller; the encoder's scratch buffer is
// pooled.
func JPEG(img image.Image, quality int) ([]byte, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: ClampQuality(quality)}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	payload := make([]byte, buf.Len())
	copy(payload, buf.Bytes())
	return payload, nil
}

// DecodeFrame decodes one compressed frame payload back into an image.
func DecodeFrame(payload []byte) (image.Image, error) {
	img, err := jpeg.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("frame decode failed: %w", err)
	}
	return img, nil
}
