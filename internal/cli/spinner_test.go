package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer against the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestSpinnerWritesFrames(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), "Planning...")
	s.setWriter(&buf)

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if buf.Len() == 0 {
		t.Error("spinner should have written frames")
	}
}

func TestSpinnerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf syncBuffer
	s := newSpinner(ctx, "Planning...")
	s.setWriter(&buf)
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after context cancel")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), "Planning...")
	s.setWriter(&buf)
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}
