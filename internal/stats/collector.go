// Package stats tracks per-round transaction counts and latencies.
//
// The rate-control subsystem only ever reads a Collector; the worker's
// submission loop is the sole writer.
package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Collector is the read-only view pacing controllers use to observe
// round progress.
type Collector interface {
	// TotalSubmitted returns the number of transactions submitted so
	// far this round, excluding any transaction currently being paced.
	TotalSubmitted() int64

	// TotalFinished returns the number of submitted transactions whose
	// completion has been observed.
	TotalFinished() int64

	// RoundStart returns the wall-clock start of the round.
	RoundStart() time.Time
}

// HDRCollector is the default collector: lock-free counters plus an HDR
// histogram of per-transaction latency.
//
// Histogram range is 1 microsecond to 1 hour at 3 significant figures,
// recorded in microseconds.
type HDRCollector struct {
	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	start time.Time

	histMu sync.Mutex
	hist   *hdrhistogram.Histogram
}

// NewHDRCollector creates a collector whose round clock starts at start.
func NewHDRCollector(start time.Time) *HDRCollector {
	return &HDRCollector{
		start: start,
		hist:  hdrhistogram.New(1, 3600_000_000, 3),
	}
}

func (c *HDRCollector) TotalSubmitted() int64 { return c.submitted.Load() }

func (c *HDRCollector) TotalFinished() int64 {
	return c.succeeded.Load() + c.failed.Load()
}

func (c *HDRCollector) RoundStart() time.Time { return c.start }

// MarkSubmitted records one transaction submission.
func (c *HDRCollector) MarkSubmitted() {
	c.submitted.Add(1)
}

// MarkFinished records one transaction completion with its latency.
func (c *HDRCollector) MarkFinished(latency time.Duration, ok bool) {
	if ok {
		c.succeeded.Add(1)
	} else {
		c.failed.Add(1)
	}
	c.histMu.Lock()
	// RecordValue only fails outside the histogram's range; clamp instead
	// of dropping the sample.
	us := latency.Microseconds()
	if us < 1 {
		us = 1
	}
	if us > 3600_000_000 {
		us = 3600_000_000
	}
	_ = c.hist.RecordValue(us)
	c.histMu.Unlock()
}

// Summary is a point-in-time aggregation of a round's activity.
type Summary struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	Elapsed   time.Duration

	MinLatency time.Duration
	P50Latency time.Duration
	P95Latency time.Duration
	P99Latency time.Duration
	MaxLatency time.Duration
}

// Summarize snapshots the collector at time now.
func (c *HDRCollector) Summarize(now time.Time) Summary {
	c.histMu.Lock()
	min := c.hist.Min()
	p50 := c.hist.ValueAtQuantile(50)
	p95 := c.hist.ValueAtQuantile(95)
	p99 := c.hist.ValueAtQuantile(99)
	max := c.hist.Max()
	c.histMu.Unlock()

	return Summary{
		Submitted:  c.submitted.Load(),
		Succeeded:  c.succeeded.Load(),
		Failed:     c.failed.Load(),
		Elapsed:    now.Sub(c.start),
		MinLatency: time.Duration(min) * time.Microsecond,
		P50Latency: time.Duration(p50) * time.Microsecond,
		P95Latency: time.Duration(p95) * time.Microsecond,
		P99Latency: time.Duration(p99) * time.Microsecond,
		MaxLatency: time.Duration(max) * time.Microsecond,
	}
}

var _ Collector = (*HDRCollector)(nil)
