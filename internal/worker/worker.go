// Package worker drives a round's submission loop against the
// rate-control subsystem: one Dispatcher per round, one pacing decision
// per transaction.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loadline/paceline/internal/output"
	"github.com/loadline/paceline/internal/rate"
	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
)

// TxFunc performs one unit of work. Its semantics are opaque to the
// pacing subsystem.
type TxFunc func(ctx context.Context) error

// Worker is one independent execution context submitting transactions
// for a round. It owns exactly one Dispatcher and one collector per
// round; nothing is shared across workers.
type Worker struct {
	index int
	log   *output.Logger
}

func New(index int) *Worker {
	return &Worker{index: index, log: output.Default()}
}

// Index returns this worker's ordinal among the round's workers.
func (w *Worker) Index() int { return w.index }

// RunRound executes one round: pacing is applied before every
// submission, so the collector's submitted count excludes the
// transaction currently being paced. The loop stops at the round's
// transaction budget, its duration, or ctx cancellation, whichever
// comes first. End always runs, with the parent context, so cleanup is
// not lost to the round deadline.
func (w *Worker) RunRound(ctx context.Context, msg round.Message, tx TxFunc) (stats.Summary, error) {
	collector := stats.NewHDRCollector(time.Now())

	dispatcher, err := rate.NewDispatcher(msg, collector, w.index)
	if err != nil {
		return stats.Summary{}, fmt.Errorf("round %q: %w", msg.RoundLabel(), err)
	}

	roundCtx := ctx
	var cancel context.CancelFunc
	var budget int64
	if r, ok := msg.(*round.Round); ok {
		budget = r.TxNumber
		if r.Duration > 0 {
			roundCtx, cancel = context.WithTimeout(ctx, r.Duration)
			defer cancel()
		}
	}

	var loopErr error
	for budget == 0 || collector.TotalSubmitted() < budget {
		if err := dispatcher.ApplyRateControl(roundCtx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			loopErr = fmt.Errorf("round %q: pacing failed: %w", msg.RoundLabel(), err)
			break
		}

		collector.MarkSubmitted()
		start := time.Now()
		txErr := tx(roundCtx)
		collector.MarkFinished(time.Since(start), txErr == nil)
	}

	if err := dispatcher.End(ctx); err != nil {
		w.log.Errorf("worker %d: round-end cleanup failed: %v", w.index, err)
		if loopErr == nil {
			loopErr = err
		}
	}

	return collector.Summarize(time.Now()), loopErr
}
