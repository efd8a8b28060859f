package rate

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/loadline/paceline/internal/core"
	"github.com/loadline/paceline/internal/output"
	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// fakeCollector is a settable stand-in for the worker's collector.
type fakeCollector struct {
	submitted int64
	finished  int64
	start     time.Time
}

func (f *fakeCollector) TotalSubmitted() int64 { return f.submitted }
func (f *fakeCollector) TotalFinished() int64  { return f.finished }
func (f *fakeCollector) RoundStart() time.Time { return f.start }

var _ stats.Collector = (*fakeCollector)(nil)

// setupTestEnv substitutes a fake clock and a capturing logger for the
// duration of the test.
func setupTestEnv(t *testing.T) (*core.FakeClock, *bytes.Buffer) {
	t.Helper()

	clock := core.NewFakeClock(time.Unix(1_700_000_000, 0))
	buf := &bytes.Buffer{}
	logger := output.New(buf, output.LevelDebug)

	prevClock, prevLogger := defaultClock, defaultLogger
	defaultClock = clock
	defaultLogger = func() *output.Logger { return logger }
	t.Cleanup(func() {
		defaultClock = prevClock
		defaultLogger = prevLogger
	})

	return clock, buf
}

func testMsg(spec round.ControllerSpec) *round.Round {
	return &round.Round{
		Label:       "round-under-test",
		Index:       2,
		Workers:     1,
		RateControl: spec,
	}
}

// spec and opts are shorthand builders for controller specs in tests.
type opts = map[string]interface{}

func spec(typ string, o opts) round.ControllerSpec {
	return round.ControllerSpec{Type: typ, Opts: round.Options(o)}
}

// stub controllers used by dispatcher and composite tests.
type stubController struct {
	baseController
	applies *int
	ends    *int
}

func (s *stubController) ApplyRateControl(ctx context.Context) error {
	*s.applies++
	return nil
}

func (s *stubController) End(ctx context.Context) error {
	*s.ends++
	return nil
}

var (
	registerStubsOnce sync.Once

	stubAApplies, stubAEnds int
	stubBApplies, stubBEnds int

	// lastStubA holds the most recently constructed stub-a instance so
	// tests can compare dispatch results against the factory's output.
	lastStubA Controller
)

func registerStubs() {
	registerStubsOnce.Do(func() {
		Register("stub-a-rate", func(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
			base, err := newBaseController(msg, collector, workerIndex)
			if err != nil {
				return nil, err
			}
			c := &stubController{baseController: base, applies: &stubAApplies, ends: &stubAEnds}
			lastStubA = c
			return c, nil
		})
		Register("stub-b-rate", func(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
			base, err := newBaseController(msg, collector, workerIndex)
			if err != nil {
				return nil, err
			}
			return &stubController{baseController: base, applies: &stubBApplies, ends: &stubBEnds}, nil
		})
	})
}

func resetStubs() {
	stubAApplies, stubAEnds = 0, 0
	stubBApplies, stubBEnds = 0, 0
	lastStubA = nil
}
