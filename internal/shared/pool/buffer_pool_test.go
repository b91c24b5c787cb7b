package pool

import (
	"bytes"
	"testing"
)

func TestGetBufferIsEmpty(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("leftover")
	PutBuffer(buf)

	got := GetBuffer()
	if got.Len() != 0 {
		t.Errorf("pooled buffer not reset, has %d bytes", got.Len())
	}
	PutBuffer(got)
}

func TestPutBufferDropsOversized(t *testing.T) {
	huge := bytes.NewBuffer(make([]byte, 0, maxRetainedSize+1))
	PutBuffer(huge)
	PutBuffer(nil)
}
