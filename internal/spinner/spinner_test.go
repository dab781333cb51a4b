package spinner

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer shared with the spinner goroutine.
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

func TestSpinnerStartStop(t *testing.T) {
	var buf syncBuffer
	s := New(&buf, "Reading input...")

	if s.Active() {
		t.Error("Spinner should not be active initially")
	}

	s.Start(context.Background())
	if !s.Active() {
		t.Error("Spinner should be active after Start()")
	}

	time.Sleep(250 * time.Millisecond)
	s.Message("Weighing words...")
	time.Sleep(250 * time.Millisecond)
	s.Stop()

	if s.Active() {
		t.Error("Spinner should not be active after Stop()")
	}

	output := buf.String()
	if !strings.Contains(output, "Reading input...") || !strings.Contains(output, "Weighing words...") {
		t.Errorf("Expected both messages in output, got %q", output)
	}

	hasFrame := false
	for _, frame := range frames {
		if strings.Contains(output, frame) {
			hasFrame = true
			break
		}
	}
	if !hasFrame {
		t.Error("Expected spinner frames in output")
	}
	// a non-terminal writer gets a plain carriage return, no escape codes
	if strings.Contains(output, "\033[2K") {
		t.Error("Expected no terminal control sequences for a buffer")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var buf syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	s := New(&buf, "Working...")

	s.Start(ctx)
	cancel()
	time.Sleep(150 * time.Millisecond)
	s.Stop() // must not block on an already finished goroutine

	if s.Active() {
		t.Error("Spinner should not be active after Stop()")
	}
}

func TestSpinnerRepeatedCalls(t *testing.T) {
	var buf syncBuffer
	s := New(&buf, "Working...")

	s.Stop() // stop before start is a no-op
	s.Start(context.Background())
	s.Start(context.Background())
	s.Stop()
	s.Stop()
}

func TestForTerminal(t *testing.T) {
	var buf bytes.Buffer
	if s := ForTerminal(&buf, "Working...", false); s != nil {
		t.Error("ForTerminal() should return nil for a non-terminal writer")
	}

	// the nil spinner is a safe no-op
	var s *Spinner
	s.Start(context.Background())
	s.Message("ignored")
	if s.Active() {
		t.Error("nil Spinner should never be active")
	}
	s.Stop()
}
