package rate

import (
	"context"
	"time"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

const (
	feedbackDefaultUnfinished = 10

	// feedbackMaxSteps caps the backlog penalty so a stalled system
	// cannot inflate a single sleep unboundedly.
	feedbackMaxSteps = 100
)

// fixedFeedbackRate paces like fixed-rate but stretches its sleeps as
// the unfinished backlog grows: every multiple of unfinishedPerWorker
// transactions awaiting completion adds one base interval of penalty.
type fixedFeedbackRate struct {
	baseController

	tps        float64
	unfinished int64
}

func newFixedFeedbackRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &fixedFeedbackRate{baseController: base}

	tps, ok := c.opts.Float("tps")
	if !ok {
		tps = fixedRateDefaultTps
	}
	if tps <= 0 {
		return nil, &ConfigError{Message: "The tps option must be greater than zero"}
	}
	c.tps = perWorkerTps(tps, c.workerCount)

	c.unfinished = feedbackDefaultUnfinished
	if n, ok := c.opts.Int64("unfinishedPerWorker"); ok {
		if n <= 0 {
			return nil, &ConfigError{Message: "The unfinishedPerWorker option must be greater than zero"}
		}
		c.unfinished = n
	}

	return c, nil
}

func (c *fixedFeedbackRate) ApplyRateControl(ctx context.Context) error {
	submitted := c.stats.TotalSubmitted()

	// Drift-compensated fixed-rate target: where in the round this
	// submission should fall.
	target := time.Duration(float64(submitted) / c.tps * float64(time.Second))
	elapsed := c.clock.Since(c.stats.RoundStart())
	sleep := target - elapsed

	backlog := submitted - c.stats.TotalFinished()
	steps := backlog / c.unfinished
	if steps > 0 {
		if steps > feedbackMaxSteps {
			steps = feedbackMaxSteps
		}
		penalty := time.Duration(float64(steps) / c.tps * float64(time.Second))
		if sleep < 0 {
			sleep = 0
		}
		sleep += penalty
	}

	if sleep < minSleep {
		return nil
	}
	return c.clock.Sleep(ctx, sleep)
}

func (c *fixedFeedbackRate) End(ctx context.Context) error {
	return nil
}

func init() {
	Register("fixed-feedback-rate", newFixedFeedbackRate)
}
