// Package spinner shows a progress indicator on stderr while a generation
// runs. It stays silent when the output is not a terminal.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

var frames = []string{"◜", "◠", "◝", "◞", "◡", "◟"}

const frameDelay = 100 * time.Millisecond

// Spinner represents a spinning progress indicator. A nil *Spinner is a
// valid no-op.
type Spinner struct {
	writer   io.Writer
	terminal bool

	mu      sync.Mutex
	message string
	active  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a spinner writing to writer. It animates whatever the writer
// is; use ForTerminal to animate only on a terminal.
func New(writer io.Writer, message string) *Spinner {
	return &Spinner{writer: writer, message: message, terminal: isTerminal(writer)}
}

// ForTerminal returns a spinner for writer, or nil when writer is not a
// terminal or disabled is set, so piped output stays clean.
func ForTerminal(writer io.Writer, message string, disabled bool) *Spinner {
	if disabled || !isTerminal(writer) {
		return nil
	}
	return New(writer, message)
}

// Start begins the animation. It stops on its own when ctx is done.
func (s *Spinner) Start(ctx context.Context) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.active = true
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()

	if s.terminal {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Message replaces the text shown after the frame, e.g. on a pipeline stage change.
func (s *Spinner) Message(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(frameDelay)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.writer, "\r%s %s", frames[i%len(frames)], message)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
