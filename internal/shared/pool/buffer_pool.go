// Package pool reuses the scratch buffers of the frame encode path. A
// 30fps stream produces one compressed frame per cycle; recycling the
// encoder's output buffer keeps that churn off the garbage collector.
package pool

import (
	"bytes"
	"sync"
)

// maxRetainedSize caps the buffers kept in the pool. A frame that
// compressed unusually large would otherwise pin its buffer forever.
const maxRetainedSize = 4 * 1024 * 1024

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer returns an empty buffer from the pool.
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool. Oversized buffers are dropped
// and left to the garbage collector.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxRetainedSize {
		return
	}
	bufferPool.Put(buf)
}
