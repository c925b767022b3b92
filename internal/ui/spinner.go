package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState is where a spinner is in its life.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerRunning
	SpinnerSuccess
	SpinnerFailed
	SpinnerSkipped
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// Spinner shows a one-line animated indicator on w until it is finished
// with Success, Fail or Skip.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	state   SpinnerState
	frame   int
	started time.Time
	stop    chan struct{}
	done    chan struct{}
	width   int
}

// NewSpinner returns a pending spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{w: w, label: label}
}

// Start begins the animation. Starting a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.state == SpinnerRunning {
		s.mu.Unlock()
		return
	}
	s.state = SpinnerRunning
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.drawLocked()
	s.mu.Unlock()

	go s.animate()
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.drawLocked()
			s.mu.Unlock()
		}
	}
}

func (s *Spinner) drawLocked() {
	color := spinnerColors[(s.frame/2)%len(spinnerColors)]
	line := fmt.Sprintf("%s %s...", lipgloss.NewStyle().Foreground(color).Render(spinnerFrames[s.frame]), s.label)
	s.clearLocked()
	fmt.Fprint(s.w, line)
	s.width = lipgloss.Width(line)
}

func (s *Spinner) clearLocked() {
	if s.width > 0 {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
		s.width = 0
	}
}

// halt stops the animation goroutine and reports whether it was running.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	if s.state != SpinnerRunning {
		s.mu.Unlock()
		return false
	}
	close(s.stop)
	s.mu.Unlock()
	<-s.done
	return true
}

// Success finishes with a check mark. detail, if set, follows the label.
func (s *Spinner) Success(detail string) { s.finish(SpinnerSuccess, detail) }

// Fail finishes with a cross and the reason.
func (s *Spinner) Fail(reason string) { s.finish(SpinnerFailed, reason) }

// Skip finishes with a skipped marker.
func (s *Spinner) Skip(reason string) { s.finish(SpinnerSkipped, reason) }

func (s *Spinner) finish(state SpinnerState, detail string) {
	s.halt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.clearLocked()

	var symbol string
	switch state {
	case SpinnerSuccess:
		symbol = Success(SymbolSuccess)
	case SpinnerFailed:
		symbol = Error(SymbolFail)
	default:
		symbol = Warning(SymbolSkipped)
	}

	line := symbol + " " + s.label
	if detail != "" {
		if state == SpinnerFailed {
			line += ": " + Error(detail)
		} else {
			line += " " + Muted(detail)
		}
	}
	if !s.started.IsZero() {
		line += " " + Muted(formatElapsed(time.Since(s.started)))
	}
	fmt.Fprintln(s.w, line)
}

// State returns the current state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed is the time since Start, or zero before it.
func (s *Spinner) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.IsZero() {
		return 0
	}
	return time.Since(s.started)
}

func formatElapsed(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
