package rate

import (
	"context"

	xrate "golang.org/x/time/rate"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// fixedRateDefaultTps is the round-wide default when no tps option is
// configured.
const fixedRateDefaultTps = 10.0

// fixedRate submits at a constant configured rate of transactions per
// second. The configured tps is the round-wide target; each worker
// paces at its share of it.
type fixedRate struct {
	baseController

	limiter *xrate.Limiter
}

// perWorkerTps splits a round-wide tps target across the round's
// workers.
func perWorkerTps(tps float64, workerCount int) float64 {
	if workerCount > 1 {
		tps /= float64(workerCount)
	}
	if tps <= 0 {
		tps = 1
	}
	return tps
}

func newFixedRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &fixedRate{baseController: base}

	tps, ok := c.opts.Float("tps")
	if !ok {
		tps = fixedRateDefaultTps
	}
	if tps <= 0 {
		return nil, &ConfigError{Message: "The tps option must be greater than zero"}
	}

	// Burst of one keeps submissions evenly spaced instead of allowing
	// an initial burst.
	c.limiter = xrate.NewLimiter(xrate.Limit(perWorkerTps(tps, c.workerCount)), 1)
	return c, nil
}

func (c *fixedRate) ApplyRateControl(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

func (c *fixedRate) End(ctx context.Context) error {
	return nil
}

func init() {
	Register("fixed-rate", newFixedRate)
}
