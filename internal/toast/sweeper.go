package toast

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSweepInterval is how often expired toasts are collected.
const DefaultSweepInterval = 100 * time.Millisecond

// Sweeper invokes a sweep callback on a fixed interval until stopped.
// Ticks never overlap: the next sweep starts only after the previous returns.
type Sweeper struct {
	mu     sync.Mutex
	logger *slog.Logger

	interval time.Duration
	sweep    func()

	// Control channels
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewSweeper creates a stopped sweeper. A non-positive interval uses DefaultSweepInterval.
func NewSweeper(interval time.Duration, sweep func(), logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		logger:   logger,
		interval: interval,
		sweep:    sweep,
	}
}

// Interval returns the tick interval.
func (s *Sweeper) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Start begins sweeping. The loop ends when ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		select {
		case <-s.doneCh:
			// previous loop ended with its context; start a fresh one
		default:
			return
		}
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(ctx, s.interval, s.stopCh, s.doneCh)

	s.logger.Debug("sweeper started", "interval", s.interval)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	s.logger.Debug("sweeper stopped")
}

// Running reports whether the loop is active.
func (s *Sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	select {
	case <-s.doneCh:
		return false
	default:
		return true
	}
}

func (s *Sweeper) loop(ctx context.Context, interval time.Duration, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}
