package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loadline/paceline/internal/core"
)

func TestRealClock_SleepHonorsDuration(t *testing.T) {
	var clock core.RealClock

	start := time.Now()
	if err := clock.Sleep(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Sleep(20ms) returned after %v", elapsed)
	}
}

func TestRealClock_SleepCancelled(t *testing.T) {
	var clock core.RealClock

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := clock.Sleep(ctx, time.Minute); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
}

func TestRealClock_NonPositiveSleepReturnsImmediately(t *testing.T) {
	var clock core.RealClock

	if err := clock.Sleep(context.Background(), 0); err != nil {
		t.Errorf("Sleep(0) error = %v", err)
	}
	if err := clock.Sleep(context.Background(), -time.Second); err != nil {
		t.Errorf("Sleep(-1s) error = %v", err)
	}
}

func TestFakeClock_AdvanceAndSince(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := core.NewFakeClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", clock.Now(), start)
	}

	clock.Advance(90 * time.Second)
	if got := clock.Since(start); got != 90*time.Second {
		t.Errorf("Since(start) = %v, want 90s", got)
	}
	if got := clock.SleepCount(); got != 0 {
		t.Errorf("Advance recorded %d sleeps, want 0", got)
	}
}

func TestFakeClock_SleepRecordsAndAdvances(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := core.NewFakeClock(start)
	ctx := context.Background()

	if err := clock.Sleep(ctx, 100*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}
	if err := clock.Sleep(ctx, 250*time.Millisecond); err != nil {
		t.Fatalf("Sleep() error = %v", err)
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != 100*time.Millisecond || sleeps[1] != 250*time.Millisecond {
		t.Errorf("Sleeps() = %v, want [100ms 250ms]", sleeps)
	}
	if got := clock.Since(start); got != 350*time.Millisecond {
		t.Errorf("clock advanced by %v, want 350ms", got)
	}
}

func TestFakeClock_SleepObservesCancelledContext(t *testing.T) {
	clock := core.NewFakeClock(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := clock.Sleep(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Errorf("Sleep() error = %v, want context.Canceled", err)
	}
	if got := clock.SleepCount(); got != 0 {
		t.Errorf("cancelled Sleep recorded %d sleeps, want 0", got)
	}
}
