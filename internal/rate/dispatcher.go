package rate

import (
	"context"
	"fmt"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// Dispatcher resolves a controller name to a concrete controller and
// forwards every pacing call to it.
//
// The Dispatcher is itself a thin strategy-shaped object: it derives the
// same round fields as any controller, so composite strategies can nest
// Dispatchers recursively and the submission loop never needs to know
// which concrete strategy is pacing it.
type Dispatcher struct {
	baseController

	controller Controller
}

// NewDispatcher constructs the controller named by the round's
// rate-control spec and wraps it.
//
// Construction fails with a ConfigError when the named type has no
// registered factory, and propagates the factory's own error unchanged
// when instantiation fails.
func NewDispatcher(msg round.Message, collector stats.Collector, workerIndex int) (*Dispatcher, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}

	factory, ok := lookup(base.spec.Type)
	if !ok {
		return nil, &ConfigError{Message: fmt.Sprintf("%s does not export the mandatory factory function", base.spec.Type)}
	}

	controller, err := factory(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{baseController: base, controller: controller}, nil
}

// ApplyRateControl delegates to the resolved controller.
func (d *Dispatcher) ApplyRateControl(ctx context.Context) error {
	return d.controller.ApplyRateControl(ctx)
}

// End delegates round-end cleanup to the resolved controller.
func (d *Dispatcher) End(ctx context.Context) error {
	return d.controller.End(ctx)
}

// Controller returns the resolved controller instance.
func (d *Dispatcher) Controller() Controller {
	return d.controller
}

var _ Controller = (*Dispatcher)(nil)
