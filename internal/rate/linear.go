package rate

import (
	"context"
	"math"
	"time"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// durationProvider is implemented by round messages that know the
// round's wall-clock length.
type durationProvider interface {
	RoundDuration() time.Duration
}

// txNumberProvider is implemented by round messages that know the
// round's transaction budget.
type txNumberProvider interface {
	RoundTxNumber() int64
}

// linearRate ramps the target rate linearly between two bounds over the
// round. Progress is measured against the round's transaction budget
// when one is known, otherwise against its wall-clock duration.
type linearRate struct {
	baseController

	startTps  float64
	finishTps float64

	txNumber int64         // 0 when unknown
	duration time.Duration // 0 when unknown

	bucket *leakyBucket
}

func newLinearRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &linearRate{baseController: base}

	start, ok := c.opts.Float("startingTps")
	if !ok || start <= 0 {
		return nil, &ConfigError{Message: "The startingTps option is undefined"}
	}
	finish, ok := c.opts.Float("finishingTps")
	if !ok || finish <= 0 {
		return nil, &ConfigError{Message: "The finishingTps option is undefined"}
	}
	c.startTps = perWorkerTps(start, c.workerCount)
	c.finishTps = perWorkerTps(finish, c.workerCount)

	if n, ok := c.opts.Int64("txNumber"); ok && n > 0 {
		c.txNumber = n
	} else if p, ok := msg.(txNumberProvider); ok && p.RoundTxNumber() > 0 {
		c.txNumber = p.RoundTxNumber()
	}
	if ms, ok := c.opts.Float("duration"); ok && ms > 0 {
		c.duration = time.Duration(ms * float64(time.Millisecond))
	} else if p, ok := msg.(durationProvider); ok && p.RoundDuration() > 0 {
		c.duration = p.RoundDuration()
	}
	if c.txNumber == 0 && c.duration == 0 {
		return nil, &ConfigError{Message: "The linear rate controller needs either a transaction number or a round duration to ramp over"}
	}

	c.bucket = newLeakyBucket(c.startTps)
	return c, nil
}

// progress returns how far the round has advanced, in [0, 1].
func (c *linearRate) progress() float64 {
	var p float64
	if c.txNumber > 0 {
		p = float64(c.stats.TotalSubmitted()) / float64(c.txNumber)
	} else {
		p = float64(c.clock.Since(c.stats.RoundStart())) / float64(c.duration)
	}
	return math.Min(math.Max(p, 0), 1)
}

func (c *linearRate) ApplyRateControl(ctx context.Context) error {
	target := c.startTps + (c.finishTps-c.startTps)*c.progress()
	current := c.bucket.getRate()
	if diff := math.Abs(target - current); diff > 0.01*current {
		c.bucket.setRate(target)
	}
	return c.bucket.wait(ctx)
}

func (c *linearRate) End(ctx context.Context) error {
	return nil
}

func init() {
	Register("linear-rate", newLinearRate)
}
