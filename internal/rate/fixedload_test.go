package rate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newFixedLoadForTest(t *testing.T, o opts, collector *fakeCollector) *fixedLoad {
	t.Helper()
	c, err := newFixedLoad(testMsg(spec("fixed-load", o)), collector, 0)
	if err != nil {
		t.Fatalf("newFixedLoad() error = %v", err)
	}
	return c.(*fixedLoad)
}

func TestFixedLoad_InvalidTransactionLoad(t *testing.T) {
	setupTestEnv(t)

	_, err := newFixedLoad(testMsg(spec("fixed-load", opts{"transactionLoad": 0})), &fakeCollector{}, 0)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error type = %T, want *ConfigError", err)
	}
	if want := "The transactionLoad option must be greater than zero"; cfgErr.Message != want {
		t.Errorf("error = %q, want %q", cfgErr.Message, want)
	}
}

func TestFixedLoad_SteadyStateHoldsRate(t *testing.T) {
	clock, _ := setupTestEnv(t)

	// Backlog equals the target: no adjustment, interval stays 1/startTps.
	collector := &fakeCollector{submitted: 10, finished: 0, start: clock.Now()}
	c := newFixedLoadForTest(t, opts{"transactionLoad": 10, "startTps": 5}, collector)

	if err := c.ApplyRateControl(context.Background()); err != nil {
		t.Fatalf("ApplyRateControl() error = %v", err)
	}
	sleeps := clock.Sleeps()
	if len(sleeps) != 1 || sleeps[0] != 200*time.Millisecond {
		t.Errorf("sleeps = %v, want [200ms]", sleeps)
	}
}

func TestFixedLoad_SpeedsUpUnderTarget(t *testing.T) {
	clock, _ := setupTestEnv(t)

	// Empty backlog: full positive error, rate grows by the gain.
	collector := &fakeCollector{start: clock.Now()}
	c := newFixedLoadForTest(t, opts{"transactionLoad": 10, "startTps": 5}, collector)

	if err := c.ApplyRateControl(context.Background()); err != nil {
		t.Fatalf("ApplyRateControl() error = %v", err)
	}
	sleeps := clock.Sleeps()
	want := time.Duration(float64(time.Second) / (5 * (1 + fixedLoadGain)))
	if len(sleeps) != 1 || sleeps[0] != want {
		t.Errorf("sleeps = %v, want [%v]", sleeps, want)
	}
}

func TestFixedLoad_SlowsDownOverTarget(t *testing.T) {
	clock, _ := setupTestEnv(t)

	// Backlog at three times the target: adjustment clamps at the gain
	// floor instead of collapsing the rate in one step.
	collector := &fakeCollector{submitted: 30, finished: 0, start: clock.Now()}
	c := newFixedLoadForTest(t, opts{"transactionLoad": 10, "startTps": 5}, collector)

	if err := c.ApplyRateControl(context.Background()); err != nil {
		t.Fatalf("ApplyRateControl() error = %v", err)
	}
	sleeps := clock.Sleeps()
	rate := 5 * (1 - fixedLoadGain)
	want := time.Duration(float64(time.Second) / rate)
	if len(sleeps) != 1 || sleeps[0] != want {
		t.Errorf("sleeps = %v, want [%v]", sleeps, want)
	}
}

func TestFixedLoad_RateFloor(t *testing.T) {
	clock, _ := setupTestEnv(t)

	collector := &fakeCollector{submitted: 1000, finished: 0, start: clock.Now()}
	c := newFixedLoadForTest(t, opts{"transactionLoad": 10, "startTps": 5}, collector)

	// Repeated overload decisions must not push the rate below the floor.
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := c.ApplyRateControl(ctx); err != nil {
			t.Fatalf("ApplyRateControl() error = %v", err)
		}
	}
	if c.currentTps < fixedLoadMinTps {
		t.Errorf("currentTps = %v, want at least %v", c.currentTps, fixedLoadMinTps)
	}
}
