package rate

import (
	"context"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
	"github.com/loadline/paceline/internal/trace"
)

// recordRate observes real submission timing and writes it out as a
// trace file at round end, for later replay.
//
// Pacing itself is delegated to a wrapped controller resolved from the
// rateController option through a nested Dispatcher, so any strategy
// can be recorded.
type recordRate struct {
	baseController

	inner        Controller
	records      []uint32
	outputFormat trace.Format
	path         string
}

func newRecordRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &recordRate{baseController: base}

	pathTemplate, ok := c.opts.String("pathTemplate")
	if !ok || pathTemplate == "" {
		return nil, &ConfigError{Message: "The path to save the recording to is undefined"}
	}
	c.path = resolvePathTemplate(pathTemplate, c.roundIndex, c.workerIndex)

	c.outputFormat = c.resolveOutputFormat()

	rawSpec, ok := c.opts["rateController"]
	if !ok {
		return nil, &ConfigError{Message: "The rate controller to record is undefined"}
	}
	spec, err := decodeControllerSpec(rawSpec)
	if err != nil {
		return nil, err
	}
	inner, err := NewDispatcher(round.WithRateControl(msg, spec), collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c.inner = inner

	return c, nil
}

func (c *recordRate) resolveOutputFormat() trace.Format {
	raw, ok := c.opts.String("outputFormat")
	if !ok {
		c.log.Warnf("Output format is undefined. Defaulting to \"TEXT\" format")
		return trace.FormatText
	}
	format, ok := trace.ParseFormat(raw)
	if !ok {
		c.log.Warnf("Output format \"%s\" is not supported. Defaulting to \"TEXT\" format", raw)
		return trace.FormatText
	}
	c.log.Debugf("Output format is set to \"%s\" format", format)
	return format
}

// ApplyRateControl lets the wrapped controller pace the submission,
// then records the submission's offset from round start.
func (c *recordRate) ApplyRateControl(ctx context.Context) error {
	if err := c.inner.ApplyRateControl(ctx); err != nil {
		return err
	}
	offset := c.clock.Since(c.stats.RoundStart())
	c.records = append(c.records, uint32(offset/time.Millisecond))
	return nil
}

// End finishes the wrapped controller and flushes the recorded trace.
func (c *recordRate) End(ctx context.Context) error {
	if err := c.inner.End(ctx); err != nil {
		return err
	}
	return trace.Write(c.path, c.outputFormat, c.records)
}

// decodeControllerSpec converts a raw option value (a decoded YAML/JSON
// mapping) into a ControllerSpec.
func decodeControllerSpec(v interface{}) (round.ControllerSpec, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return round.ControllerSpec{}, &ConfigError{Message: "invalid sub-controller specification"}
	}
	var spec round.ControllerSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return round.ControllerSpec{}, &ConfigError{Message: "invalid sub-controller specification"}
	}
	if spec.Type == "" {
		return round.ControllerSpec{}, &ConfigError{Message: "sub-controller specification is missing a type"}
	}
	return spec, nil
}

func init() {
	Register("record-rate", newRecordRate)
}
