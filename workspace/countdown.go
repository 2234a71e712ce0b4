package workspace

import (
	"context"
	"sync"
	"time"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Tick is one countdown reading. Done marks the final tick, emitted
// once the target is reached; the channel closes after it.
type Tick struct {
	Remaining time.Duration
	Display   string
	Done      bool
}

// Countdown emits the remaining time to a target on a fixed cadence.
// Every reading is recomputed from the wall clock, so a slow consumer
// or a paused process never accumulates drift. The owning view must
// call Stop (or cancel the context) when it is dismissed.
type Countdown struct {
	target   time.Time
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type CountdownOption func(*Countdown)

// WithInterval overrides the one-second cadence (primarily for tests).
func WithInterval(interval time.Duration) CountdownOption {
	return func(c *Countdown) {
		c.interval = interval
	}
}

func NewCountdown(target time.Time, options ...CountdownOption) *Countdown {
	c := &Countdown{
		target:   target,
		interval: time.Second,
		stop:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Start begins ticking. The returned channel closes after the Done tick
// or as soon as the countdown is stopped or ctx is cancelled.
func (c *Countdown) Start(ctx context.Context) <-chan Tick {
	out := make(chan Tick, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			remaining := TimeUntil(c.target, NowTimeFunc())
			if remaining == nil {
				select {
				case out <- Tick{Done: true}:
				case <-ctx.Done():
				case <-c.stop:
				}
				return
			}

			select {
			case out <- Tick{Remaining: *remaining, Display: FormatRemaining(*remaining)}:
			default: // consumer is behind; the next reading supersedes this one
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			}
		}
	}()

	return out
}

// Stop tears the countdown down. Safe to call multiple times.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
