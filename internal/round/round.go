// Package round defines the configuration a worker receives for one
// benchmark round: the round's identity, its worker set, and the rate
// controller that paces it.
package round

import (
	"time"
)

// ControllerSpec selects a rate controller by name and carries the
// controller-specific options passed to its factory.
type ControllerSpec struct {
	Type string  `json:"type" yaml:"type"`
	Opts Options `json:"opts,omitempty" yaml:"opts,omitempty"`
}

// Options is the free-form option mapping of a controller spec.
//
// Values come from decoded YAML or JSON documents, so numeric lookups
// tolerate the concrete types both decoders produce.
type Options map[string]interface{}

// String returns the string stored under key, if any.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64 returns the integer stored under key, accepting any numeric
// type a decoder may have produced.
func (o Options) Int64(key string) (int64, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// Float returns the float stored under key, accepting any numeric type.
func (o Options) Float(key string) (float64, bool) {
	v, ok := o[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Bool returns the boolean stored under key, if any.
func (o Options) Bool(key string) (bool, bool) {
	v, ok := o[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Message is the round-configuration view the rate-control subsystem
// consumes. Implementations are read-only for the round's lifetime.
type Message interface {
	// RateControlSpec returns the controller selection for this round.
	RateControlSpec() ControllerSpec

	// RoundIndex returns the zero-based index of this round.
	RoundIndex() int

	// RoundLabel returns the human-readable round name.
	RoundLabel() string

	// WorkerCount returns how many workers drive this round.
	WorkerCount() int
}

// Round is the concrete round configuration carried from the
// orchestrator to each worker. It implements Message.
type Round struct {
	Label       string         `json:"label" yaml:"label"`
	Index       int            `json:"index" yaml:"index"`
	Workers     int            `json:"workers" yaml:"workers"`
	TxNumber    int64          `json:"txNumber,omitempty" yaml:"txNumber,omitempty"`
	Duration    time.Duration  `json:"duration,omitempty" yaml:"duration,omitempty"`
	RateControl ControllerSpec `json:"rateControl" yaml:"rateControl"`
}

func (r *Round) RateControlSpec() ControllerSpec { return r.RateControl }
func (r *Round) RoundIndex() int                 { return r.Index }
func (r *Round) RoundLabel() string              { return r.Label }
func (r *Round) WorkerCount() int                { return r.Workers }

// RoundTxNumber returns the round's transaction budget, 0 if unbounded.
func (r *Round) RoundTxNumber() int64 { return r.TxNumber }

// RoundDuration returns the round's wall-clock length, 0 if unbounded.
func (r *Round) RoundDuration() time.Duration { return r.Duration }

var _ Message = (*Round)(nil)

// respec wraps a Message, substituting its controller spec while
// preserving round identity. Controllers that resolve nested
// sub-controllers (record-rate, composite-rate) use it so the nested
// factory sees the same round it is pacing.
type respec struct {
	Message
	spec ControllerSpec
}

func (r respec) RateControlSpec() ControllerSpec { return r.spec }

// WithRateControl returns a view of msg whose rate-control spec is
// replaced by spec.
func WithRateControl(msg Message, spec ControllerSpec) Message {
	return respec{Message: msg, spec: spec}
}
