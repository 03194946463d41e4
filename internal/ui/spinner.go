package ui

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows an indeterminate progress spinner while a long tool runs.
// A disabled spinner does nothing, which is what verbose mode wants since
// the tool output is streamed instead.
type Spinner struct {
	w       io.Writer
	enabled bool

	mu   sync.Mutex
	bar  *progressbar.ProgressBar
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, enabled bool) *Spinner {
	return &Spinner{w: w, enabled: enabled}
}

// Start shows the spinner with description. A running spinner is replaced.
func (s *Spinner) Start(description string) {
	if !s.enabled {
		return
	}
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(s.w),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	s.done = make(chan struct{})

	bar, done := s.bar, s.done
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
}

// Stop removes the spinner. It is safe to call when nothing is running.
func (s *Spinner) Stop() {
	s.mu.Lock()
	bar, done := s.bar, s.done
	s.bar, s.done = nil, nil
	s.mu.Unlock()

	if bar == nil {
		return
	}
	close(done)
	s.wg.Wait()
	_ = bar.Finish()
}
