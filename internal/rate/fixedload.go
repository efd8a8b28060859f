package rate

import (
	"context"
	"time"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

const (
	fixedLoadDefaultTarget   = 10
	fixedLoadDefaultStartTps = 5.0

	// fixedLoadGain bounds how aggressively the rate reacts to backlog
	// error on each pacing decision.
	fixedLoadGain = 0.25

	fixedLoadMinTps = 0.1
)

// fixedLoad maintains a constant number of in-flight (unconfirmed)
// transactions rather than a fixed rate. The submission rate is
// adjusted multiplicatively from the backlog error observed on each
// pacing decision.
type fixedLoad struct {
	baseController

	targetLoad int64
	currentTps float64
}

func newFixedLoad(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &fixedLoad{baseController: base}

	c.targetLoad = fixedLoadDefaultTarget
	if n, ok := c.opts.Int64("transactionLoad"); ok {
		if n <= 0 {
			return nil, &ConfigError{Message: "The transactionLoad option must be greater than zero"}
		}
		c.targetLoad = n
	}

	start := fixedLoadDefaultStartTps
	if tps, ok := c.opts.Float("startTps"); ok && tps > 0 {
		start = tps
	}
	c.currentTps = perWorkerTps(start, c.workerCount)

	return c, nil
}

func (c *fixedLoad) ApplyRateControl(ctx context.Context) error {
	unfinished := c.stats.TotalSubmitted() - c.stats.TotalFinished()
	errTerm := float64(c.targetLoad-unfinished) / float64(c.targetLoad)

	adjust := 1 + fixedLoadGain*errTerm
	if adjust < 1-fixedLoadGain {
		adjust = 1 - fixedLoadGain
	}
	c.currentTps *= adjust
	if c.currentTps < fixedLoadMinTps {
		c.currentTps = fixedLoadMinTps
	}

	interval := time.Duration(float64(time.Second) / c.currentTps)
	if interval < minSleep {
		return nil
	}
	return c.clock.Sleep(ctx, interval)
}

func (c *fixedLoad) End(ctx context.Context) error {
	return nil
}

func init() {
	Register("fixed-load", newFixedLoad)
}
