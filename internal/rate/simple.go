package rate

import (
	"context"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// maximumRate never delays a submission; throughput is bounded only by
// the system under test. Used for saturation testing.
type maximumRate struct {
	baseController
}

func newMaximumRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	return &maximumRate{baseController: base}, nil
}

func (c *maximumRate) ApplyRateControl(ctx context.Context) error {
	return ctx.Err()
}

func (c *maximumRate) End(ctx context.Context) error {
	return nil
}

// zeroRate never permits a submission: it blocks until the round's
// context is cancelled. Callers bound warm-up or idle phases with a
// deadline on ctx.
type zeroRate struct {
	baseController
}

func newZeroRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	return &zeroRate{baseController: base}, nil
}

func (c *zeroRate) ApplyRateControl(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *zeroRate) End(ctx context.Context) error {
	return nil
}

func init() {
	Register("maximum-rate", newMaximumRate)
	Register("zero-rate", newZeroRate)
}
