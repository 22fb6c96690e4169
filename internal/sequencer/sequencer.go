// Package sequencer drives the clone count from gesture status edges.
package sequencer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ayusman/bunshin/internal/gesture"
)

// Default sequence settings.
const (
	DefaultStep     = 2
	DefaultInterval = 400 * time.Millisecond
	DefaultMax      = 4
)

// Config controls how fast and how far the clone count grows.
type Config struct {
	Step     int
	Interval time.Duration
	Max      int
}

// DefaultConfig returns the standard step/interval/max settings.
func DefaultConfig() Config {
	return Config{Step: DefaultStep, Interval: DefaultInterval, Max: DefaultMax}
}

// Sequencer is a two-state machine (inactive, running). An active edge starts
// a run that raises the count by Step every Interval until it reaches Max.
// A fist edge or Deactivate ends the run and drops the count to zero.
// Max should be a multiple of Step; otherwise the last step is clamped to Max.
type Sequencer struct {
	clock clockwork.Clock
	cfg   Config

	// emitMu is held from each count change through its callback so
	// subscribers see counts in commit order. Lock order: emitMu, then mu.
	emitMu sync.Mutex

	mu      sync.Mutex
	running bool
	count   int
	gen     uint64
	stop    chan struct{}
	onCount func(int)

	wg sync.WaitGroup
}

// New creates a Sequencer. A nil clock uses the real clock.
func New(cfg Config, clock clockwork.Clock) *Sequencer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sequencer{clock: clock, cfg: cfg}
}

// OnCountChange sets the callback invoked whenever the count changes.
// Calls are serialized; the callback must not call Activate or Deactivate.
func (s *Sequencer) OnCountChange(fn func(int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCount = fn
}

// HandleStatus applies a status edge. Only active (while inactive) and
// fist (while running) cause transitions.
func (s *Sequencer) HandleStatus(status gesture.Status) {
	switch status {
	case gesture.StatusActive:
		s.Activate()
	case gesture.StatusFist:
		s.Deactivate()
	}
}

// Activate starts a run. It returns false if one is already running.
func (s *Sequencer) Activate() bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return false
	}

	s.running = true
	prev := s.count
	s.count = 0
	s.gen++
	s.stop = make(chan struct{})

	if s.cfg.Step > 0 && s.cfg.Max > 0 && s.cfg.Interval > 0 {
		ticker := s.clock.NewTicker(s.cfg.Interval)
		s.wg.Add(1)
		go s.run(s.gen, s.stop, ticker)
	}
	callback := s.onCount
	s.mu.Unlock()

	if callback != nil && prev != 0 {
		callback(0)
	}
	return true
}

// Deactivate ends the current run and resets the count to zero.
// It returns false if no run was active.
func (s *Sequencer) Deactivate() bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}

	s.running = false
	s.gen++
	close(s.stop)
	prev := s.count
	s.count = 0
	callback := s.onCount
	s.mu.Unlock()

	if callback != nil && prev != 0 {
		callback(0)
	}
	return true
}

// Count returns the current clone count.
func (s *Sequencer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Active reports whether a run is in progress.
func (s *Sequencer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State returns the running flag and count as one consistent pair.
func (s *Sequencer) State() (active bool, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.count
}

// Close deactivates and waits for the timer goroutine to exit.
func (s *Sequencer) Close() {
	s.Deactivate()
	s.wg.Wait()
}

func (s *Sequencer) run(gen uint64, stop <-chan struct{}, ticker clockwork.Ticker) {
	defer s.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if s.advance(gen) {
				return
			}
		}
	}
}

// advance adds one step and reports whether the run's timer is finished.
func (s *Sequencer) advance(gen uint64) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	if gen != s.gen || !s.running {
		s.mu.Unlock()
		return true
	}

	s.count += s.cfg.Step
	done := false
	if s.count >= s.cfg.Max {
		s.count = s.cfg.Max
		done = true
	}
	count := s.count
	callback := s.onCount
	s.mu.Unlock()

	if callback != nil {
		callback(count)
	}
	return done
}
