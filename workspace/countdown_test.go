package workspace_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/accessware/go-console/workspace"
	"github.com/stretchr/testify/require"
)

func TestCountdown(t *testing.T) {
	t.Run("ticks decrease and finish with a done tick", func(t *testing.T) {
		target := time.Now().Add(120 * time.Millisecond)
		countdown := workspace.NewCountdown(target, workspace.WithInterval(10*time.Millisecond))
		defer countdown.Stop()

		ticks := countdown.Start(context.Background())

		var previous time.Duration
		var sawReading, sawDone bool
		deadline := time.After(2 * time.Second)
		for !sawDone {
			select {
			case tick, open := <-ticks:
				require.True(t, open, "channel closed before the done tick")
				if tick.Done {
					sawDone = true
					break
				}
				if sawReading {
					require.LessOrEqual(t, tick.Remaining, previous)
				}
				require.NotEmpty(t, tick.Display)
				previous = tick.Remaining
				sawReading = true
			case <-deadline:
				t.Fatal("countdown never finished")
			}
		}
		require.True(t, sawReading)

		_, open := <-ticks
		require.False(t, open, "channel must close after the done tick")
	})

	t.Run("readings come from the wall clock, not an accumulator", func(t *testing.T) {
		base := time.Now()
		var current atomic.Pointer[time.Time]
		current.Store(&base)
		workspace.NowTimeFunc = func() time.Time { return *current.Load() }
		t.Cleanup(func() { workspace.NowTimeFunc = time.Now })

		target := base.Add(time.Hour)
		countdown := workspace.NewCountdown(target, workspace.WithInterval(5*time.Millisecond))
		defer countdown.Stop()

		ticks := countdown.Start(context.Background())
		first := <-ticks
		require.Equal(t, time.Hour, first.Remaining)

		// jump the clock forward; the next reading must reflect it
		jumpedClock := base.Add(59 * time.Minute)
		current.Store(&jumpedClock)
		var jumped workspace.Tick
		for jumped = range ticks {
			if jumped.Remaining <= time.Minute {
				break
			}
		}
		require.Equal(t, time.Minute, jumped.Remaining)
		countdown.Stop()
	})

	t.Run("stop tears the countdown down", func(t *testing.T) {
		countdown := workspace.NewCountdown(time.Now().Add(time.Hour), workspace.WithInterval(5*time.Millisecond))
		ticks := countdown.Start(context.Background())

		<-ticks
		countdown.Stop()

		deadline := time.After(time.Second)
		for {
			select {
			case _, open := <-ticks:
				if !open {
					return
				}
			case <-deadline:
				t.Fatal("channel did not close after Stop")
			}
		}
	})

	t.Run("context cancellation tears the countdown down", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		countdown := workspace.NewCountdown(time.Now().Add(time.Hour), workspace.WithInterval(5*time.Millisecond))
		ticks := countdown.Start(ctx)

		<-ticks
		cancel()

		deadline := time.After(time.Second)
		for {
			select {
			case _, open := <-ticks:
				if !open {
					return
				}
			case <-deadline:
				t.Fatal("channel did not close after cancellation")
			}
		}
	})
}
