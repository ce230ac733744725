package engine

import (
	"context"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds the adaptive polling cadences
type SchedulerConfig struct {
	// ActiveInterval is the cadence while discoveries are recent
	ActiveInterval time.Duration
	// IdleInterval is the cadence once the session has gone idle
	IdleInterval time.Duration
	// IdleThreshold is how long without a discovery counts as idle
	IdleThreshold time.Duration
}

// DefaultSchedulerConfig returns the standard cadences: poll every 10s while
// active, every 30s after 5 minutes without a discovery.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ActiveInterval: 10 * time.Second,
		IdleInterval:   30 * time.Second,
		IdleThreshold:  5 * time.Minute,
	}
}

// PollFunc is invoked on every scheduled tick
type PollFunc func(ctx context.Context) error

// Scheduler owns the adaptive polling loop's lifecycle. The interval is
// re-evaluated when each tick is scheduled, never retroactively: a discovery
// arriving mid-wait only affects the following tick.
type Scheduler struct {
	cfg  SchedulerConfig
	poll PollFunc

	mu            sync.Mutex
	cancel        context.CancelFunc
	lastDiscovery time.Time
	wg            sync.WaitGroup
}

// NewScheduler creates a stopped scheduler
func NewScheduler(cfg SchedulerConfig, poll PollFunc) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		poll:          poll,
		lastDiscovery: time.Now(),
	}
}

// Start begins the polling loop. Any previous loop is cancelled first so
// repeated start/stop cycles never leak timers.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(loopCtx)
}

// Stop cancels the polling loop and waits for it to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// MarkDiscovery records discovery activity. The cadence for the next
// scheduled tick shortens accordingly.
func (s *Scheduler) MarkDiscovery(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastDiscovery) {
		s.lastDiscovery = t
	}
}

// Interval computes the cadence for the next tick from discovery recency
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastDiscovery) > s.cfg.IdleThreshold {
		return s.cfg.IdleInterval
	}
	return s.cfg.ActiveInterval
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.Interval())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			// A failed poll is logged and does not change cadence; the next
			// tick is still scheduled normally.
			if err := s.poll(ctx); err != nil {
				log.Printf("Scheduled poll failed: %v", err)
			}
		}
	}
}
