package globe

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is roughly one animation frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// Ticker is anything advanced by the scheduler; *Engine implements it.
type Ticker interface {
	Tick() bool
}

// Scheduler drives the auto-rotation of every registered engine from one
// goroutine, one cooperative tick at a time. Network calls never run on it,
// so an in-flight fetch cannot stall rotation.
type Scheduler struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	tickers map[string]Ticker
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		interval: interval,
		logger:   logger,
		tickers:  make(map[string]Ticker),
	}
}

// Add registers t under key, replacing any previous ticker with that key.
func (s *Scheduler) Add(key string, t Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[key] = t
}

// Remove unregisters key.
func (s *Scheduler) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickers, key)
}

// Len returns the number of registered tickers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// Step ticks every registered ticker once and returns how many rotated.
func (s *Scheduler) Step() int {
	s.mu.Lock()
	tickers := make([]Ticker, 0, len(s.tickers))
	for _, t := range s.tickers {
		tickers = append(tickers, t)
	}
	s.mu.Unlock()

	rotated := 0
	for _, t := range tickers {
		if t.Tick() {
			rotated++
		}
	}
	return rotated
}

// Run ticks until ctx is cancelled. It returns nil on cancellation so it can
// sit in an errgroup next to the HTTP server.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("rotation scheduler started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("rotation scheduler stopped")
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}
