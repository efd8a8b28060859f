package worker_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/trace"
	"github.com/loadline/paceline/internal/worker"
)

func noopTx(ctx context.Context) error { return nil }

func TestRunRound_ReplaysTraceToBudget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt")
	require.NoError(t, trace.Write(path, trace.FormatText, []uint32{10, 20, 30}))

	r := &round.Round{
		Label:    "replayed",
		Index:    0,
		Workers:  1,
		TxNumber: 3,
		RateControl: round.ControllerSpec{
			Type: "replay-rate",
			Opts: round.Options{
				"pathTemplate": path,
				"inputFormat":  "TEXT",
			},
		},
	}

	w := worker.New(0)
	summary, err := w.RunRound(context.Background(), r, noopTx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.Submitted)
	assert.EqualValues(t, 3, summary.Succeeded)
	assert.EqualValues(t, 0, summary.Failed)
	// The last record schedules the third submission at 30ms; the sleep
	// floor may shave a few milliseconds off the final gap.
	assert.GreaterOrEqual(t, summary.Elapsed, 20*time.Millisecond)
}

func TestRunRound_DurationBoundsUnbudgetedRound(t *testing.T) {
	r := &round.Round{
		Label:       "idle",
		Index:       0,
		Workers:     1,
		Duration:    50 * time.Millisecond,
		RateControl: round.ControllerSpec{Type: "zero-rate"},
	}

	w := worker.New(0)
	start := time.Now()
	summary, err := w.RunRound(context.Background(), r, noopTx)
	require.NoError(t, err)

	assert.EqualValues(t, 0, summary.Submitted)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestRunRound_UnknownControllerType(t *testing.T) {
	r := &round.Round{
		Label:       "broken",
		Index:       0,
		Workers:     1,
		TxNumber:    1,
		RateControl: round.ControllerSpec{Type: "no-such-rate"},
	}

	w := worker.New(0)
	_, err := w.RunRound(context.Background(), r, noopTx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-rate does not export the mandatory factory function")
}

func TestRunRound_RecordThenReplay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recorded.txt")

	recording := &round.Round{
		Label:    "recorded",
		Index:    0,
		Workers:  1,
		TxNumber: 5,
		RateControl: round.ControllerSpec{
			Type: "record-rate",
			Opts: round.Options{
				"pathTemplate": path,
				"outputFormat": "TEXT",
				"rateController": map[string]interface{}{
					"type": "fixed-rate",
					"opts": map[string]interface{}{"tps": 100},
				},
			},
		},
	}

	w := worker.New(0)
	summary, err := w.RunRound(context.Background(), recording, noopTx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Submitted)

	records, err := trace.Read(path, trace.FormatText)
	require.NoError(t, err)
	require.Len(t, records, 5)
	// Offsets are measured from round start and never decrease.
	for i := 1; i < len(records); i++ {
		assert.GreaterOrEqual(t, records[i], records[i-1])
	}

	replaying := &round.Round{
		Label:    "replayed",
		Index:    0,
		Workers:  1,
		TxNumber: 5,
		RateControl: round.ControllerSpec{
			Type: "replay-rate",
			Opts: round.Options{
				"pathTemplate": path,
				"inputFormat":  "TEXT",
			},
		},
	}
	summary, err = w.RunRound(context.Background(), replaying, noopTx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Submitted)
}
