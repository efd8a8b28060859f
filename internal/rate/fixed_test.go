package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	xrate "golang.org/x/time/rate"
)

func newFixedForTest(t *testing.T, o opts, workers int) *fixedRate {
	t.Helper()
	msg := testMsg(spec("fixed-rate", o))
	msg.Workers = workers
	c, err := newFixedRate(msg, &fakeCollector{}, 0)
	if err != nil {
		t.Fatalf("newFixedRate() error = %v", err)
	}
	return c.(*fixedRate)
}

func TestFixedRate_DefaultTps(t *testing.T) {
	setupTestEnv(t)

	c := newFixedForTest(t, opts{}, 1)
	if got := c.limiter.Limit(); got != xrate.Limit(fixedRateDefaultTps) {
		t.Errorf("limiter limit = %v, want %v", got, fixedRateDefaultTps)
	}
}

func TestFixedRate_SplitsTpsAcrossWorkers(t *testing.T) {
	setupTestEnv(t)

	c := newFixedForTest(t, opts{"tps": 100}, 4)
	if got := c.limiter.Limit(); got != xrate.Limit(25) {
		t.Errorf("limiter limit = %v, want 25", got)
	}
}

func TestFixedRate_InvalidTps(t *testing.T) {
	setupTestEnv(t)

	_, err := newFixedRate(testMsg(spec("fixed-rate", opts{"tps": -1})), &fakeCollector{}, 0)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if want := "The tps option must be greater than zero"; cfgErr.Message != want {
		t.Errorf("error = %q, want %q", cfgErr.Message, want)
	}
}

// The limiter paces in real time; assert only a coarse lower bound so
// the test stays robust on loaded machines.
func TestFixedRate_PacesSubmissions(t *testing.T) {
	setupTestEnv(t)

	c := newFixedForTest(t, opts{"tps": 200}, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := c.ApplyRateControl(ctx); err != nil {
			t.Fatalf("ApplyRateControl() error = %v", err)
		}
	}
	// Four 5ms intervals after the first submission.
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("5 submissions at 200 tps took %v, want at least 15ms", elapsed)
	}
}

func TestFixedRate_CancelledContext(t *testing.T) {
	setupTestEnv(t)

	c := newFixedForTest(t, opts{"tps": 1}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// First reservation may be immediate; the second must observe the
	// cancelled context.
	c.ApplyRateControl(ctx)
	if err := c.ApplyRateControl(ctx); err == nil {
		t.Error("ApplyRateControl() with cancelled context returned nil")
	}
}
