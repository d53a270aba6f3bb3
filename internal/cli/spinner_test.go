package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Rendering SVG...")
	s.start()
	time.Sleep(200 * time.Millisecond)
	s.stop()

	if !bytes.Contains([]byte(out.String()), []byte("Rendering SVG...")) {
		t.Errorf("spinner output %q lacks its message", out.String())
	}
	if s.interrupted() {
		t.Error("interrupted() = true after a plain stop")
	}
}

func TestSpinnerInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &syncBuffer{}, "Working...")
	s.start()
	cancel()
	s.stop()

	if !s.interrupted() {
		t.Error("interrupted() = false after the parent context was cancelled")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Working...")
	s.start()
	s.stop()
	s.stop()
}
