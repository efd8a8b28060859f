package rate

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
	"github.com/loadline/paceline/internal/trace"
)

const (
	// replayDefaultSleep is used once the trace is exhausted and no
	// defaultSleepTime option was configured.
	replayDefaultSleep = 100 * time.Millisecond

	// minSleep is the floor below which a pacing sleep is skipped.
	// Sub-5ms sleeps are unreliable on most schedulers and add more
	// jitter than they remove.
	minSleep = 5 * time.Millisecond
)

// replayRate reproduces a previously captured timing trace, pacing each
// submission to the recorded cumulative offset from round start.
//
// Only the remaining gap is awaited, not the originally recorded gap,
// so the controller self-corrects for scheduling overhead accumulated
// earlier in the round.
type replayRate struct {
	baseController

	records      []uint32
	inputFormat  trace.Format
	defaultSleep time.Duration

	warnedExhaustion bool
	ended            bool
}

func newReplayRate(msg round.Message, collector stats.Collector, workerIndex int) (Controller, error) {
	base, err := newBaseController(msg, collector, workerIndex)
	if err != nil {
		return nil, err
	}
	c := &replayRate{baseController: base, defaultSleep: replayDefaultSleep}

	pathTemplate, ok := c.opts.String("pathTemplate")
	if !ok || pathTemplate == "" {
		return nil, &ConfigError{Message: "The path to load the recording from is undefined"}
	}

	if ms, ok := c.opts.Float("defaultSleepTime"); ok {
		c.defaultSleep = time.Duration(ms * float64(time.Millisecond))
	}

	c.inputFormat = c.resolveFormat()

	path := resolvePathTemplate(pathTemplate, c.roundIndex, c.workerIndex)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &ConfigError{Message: "Trace file does not exist"}
	}

	records, err := trace.Read(path, c.inputFormat)
	if err != nil {
		return nil, err
	}
	c.records = records

	return c, nil
}

// resolveFormat reads the inputFormat option, defaulting to TEXT with a
// warning when the option is absent or names an unsupported format.
func (c *replayRate) resolveFormat() trace.Format {
	raw, ok := c.opts.String("inputFormat")
	if !ok {
		c.log.Warnf("Input format is undefined. Defaulting to \"TEXT\" format")
		return trace.FormatText
	}
	format, ok := trace.ParseFormat(raw)
	if !ok {
		c.log.Warnf("Input format \"%s\" is not supported. Defaulting to \"TEXT\" format", raw)
		return trace.FormatText
	}
	c.log.Debugf("Input format is set to \"%s\" format", format)
	return format
}

// resolvePathTemplate substitutes the round index for <R> and the
// worker index for <W>.
func resolvePathTemplate(template string, roundIndex, workerIndex int) string {
	path := strings.ReplaceAll(template, "<R>", strconv.Itoa(roundIndex))
	return strings.ReplaceAll(path, "<W>", strconv.Itoa(workerIndex))
}

func (c *replayRate) ApplyRateControl(ctx context.Context) error {
	submitted := c.stats.TotalSubmitted()

	if submitted >= int64(len(c.records)) {
		if !c.warnedExhaustion {
			c.warnedExhaustion = true
			c.log.Warnf("Rate control recording is exhausted after %d transactions, pacing with the default sleep time of %v", len(c.records), c.defaultSleep)
		}
		return c.clock.Sleep(ctx, c.defaultSleep)
	}

	target := time.Duration(c.records[submitted]) * time.Millisecond
	elapsed := c.clock.Since(c.stats.RoundStart())
	remaining := target - elapsed
	if remaining >= minSleep {
		return c.clock.Sleep(ctx, remaining)
	}
	return nil
}

func (c *replayRate) End(ctx context.Context) error {
	c.ended = true
	return nil
}

func init() {
	Register("replay-rate", newReplayRate)
}
