// Package protocol implements the video channel framing: a stream of
// discrete payloads, each preceded by a fixed-width 4-byte big-endian
// unsigned length. The width is part of the wire format and never varies
// with the host architecture.
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

const (
	// FrameHeaderSize is the length prefix width in bytes.
	FrameHeaderSize = 4

	// MaxFrameSize bounds a single payload. A length prefix above this is
	// treated as stream corruption: framing alignment is lost and the
	// connection must be torn down.
	MaxFrameSize = 32 * 1024 * 1024
)

// ErrFrameTooLarge is returned when a length prefix exceeds MaxFrameSize.
// Once it is seen the stream can no longer be trusted.
var ErrFrameTooLarge = fmt.Errorf("frame exceeds %d bytes", MaxFrameSize)

// WriteFrame writes one length-prefixed payload to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	var header [FrameHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if len(payload) == 0 {
		if _, err := w.Write(header[:]); err != nil {
			return fmt.Errorf("failed to write frame header: %w", err)
		}
		return nil
	}

	// net.Buffers uses writev for TCP connections and falls back to
	// sequential writes for other io.Writer implementations.
	if _, err := (&net.Buffers{header[:], payload}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload from r. It tolerates reads
// split at arbitrary byte boundaries: io.ReadFull accumulates until the
// header and then the payload are complete.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	payloadLen := binary.BigEndian.Uint32(header[:])
	if payloadLen > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if payloadLen == 0 {
		return nil, nil
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}
	return payload, nil
}
