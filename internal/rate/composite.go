package rate

import (
	"context"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// compositeRate delegates pacing across an ordered sequence of
// sub-controllers, each resolved through its own nested Dispatcher.
//
// Delegation is round-robin per pacing call. The submission loop never
// sees the difference; it talks to one controller-shaped object.
type compositeRate struct {
	baseController

	controllers []Controller
	calls       int64
}

func newCompositeRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &compositeRate{baseController: base}

	rawList, ok := c.opts["controllers"]
	if !ok {
		return nil, &ConfigError{Message: "The list of sub-controllers is undefined"}
	}
	list, ok := rawList.([]interface{})
	if !ok || len(list) == 0 {
		return nil, &ConfigError{Message: "The list of sub-controllers is undefined"}
	}

	for _, raw := range list {
		spec, err := decodeControllerSpec(raw)
		if err != nil {
			return nil, err
		}
		sub, err := NewDispatcher(round.WithRateControl(msg, spec), collector, workerIndex)
		if err != nil {
			return nil, err
		}
		c.controllers = append(c.controllers, sub)
	}

	return c, nil
}

func (c *compositeRate) ApplyRateControl(ctx context.Context) error {
	sub := c.controllers[c.calls%int64(len(c.controllers))]
	c.calls++
	return sub.ApplyRateControl(ctx)
}

// End finishes every sub-controller; the first error wins but cleanup
// still reaches the rest.
func (c *compositeRate) End(ctx context.Context) error {
	var firstErr error
	for _, sub := range c.controllers {
		if err := sub.End(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func init() {
	Register("composite-rate", newCompositeRate)
}
