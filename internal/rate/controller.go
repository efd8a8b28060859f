// Package rate decides, for each worker driving a benchmark round, when
// the next transaction may be submitted.
//
// A worker constructs one Dispatcher per round. The Dispatcher resolves
// the controller named by the round's rate-control spec through the
// factory registry and delegates every pacing call to it. Controllers
// implement a range of strategies, from constant transaction rates to
// binary-exact replay of previously recorded timing traces.
package rate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/loadline/paceline/internal/core"
	"github.com/loadline/paceline/internal/output"
	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// Controller is the contract every pacing strategy implements.
type Controller interface {
	// ApplyRateControl suspends the caller until it is permissible to
	// submit the next transaction. It is invoked once before each
	// submission attempt and may block for a bounded duration.
	ApplyRateControl(ctx context.Context) error

	// End performs round-end cleanup, such as releasing file handles
	// or flushing a recorded trace.
	End(ctx context.Context) error
}

// Factory constructs a controller for one worker's round.
type Factory func(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a controller factory under the given strategy name.
// Registering the same name twice panics; that is a programming defect.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("rate: controller %q registered twice", name))
	}
	registry[name] = factory
}

// lookup returns the factory for name, if one is registered.
func lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// RegisteredTypes returns the names of all registered controllers,
// sorted for stable presentation.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// baseController carries the fields every controller derives from the
// round configuration at construction. All fields are immutable for the
// round's lifetime.
type baseController struct {
	spec        round.ControllerSpec
	opts        round.Options
	roundIndex  int
	roundLabel  string
	workerCount int

	workerIndex int
	stats       stats.Collector

	clock core.Clock
	log   *output.Logger
}

// Construction seams: controllers read the clock and logger from here
// so tests can substitute a fake clock and a capturing logger.
var (
	defaultClock  core.Clock = core.RealClock{}
	defaultLogger            = output.Default
)

func newBaseController(msg round.Message, collector stats.Collector, workerIndex int) (baseController, error) {
	spec := msg.RateControlSpec()
	if spec.Type == "" {
		return baseController{}, &ConfigError{Message: "rate control type is undefined"}
	}
	return baseController{
		spec:        spec,
		opts:        spec.Opts,
		roundIndex:  msg.RoundIndex(),
		roundLabel:  msg.RoundLabel(),
		workerCount: msg.WorkerCount(),
		workerIndex: workerIndex,
		stats:       collector,
		clock:       defaultClock,
		log:         defaultLogger(),
	}, nil
}

// ApplyRateControl satisfies the contract for controllers that do not
// override pacing. Invoking it is a registration defect.
func (b *baseController) ApplyRateControl(ctx context.Context) error {
	return &NotImplementedError{Op: "ApplyRateControl"}
}

// End satisfies the contract for controllers that do not override
// cleanup.
func (b *baseController) End(ctx context.Context) error {
	return &NotImplementedError{Op: "End"}
}
