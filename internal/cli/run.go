package cli

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/loadline/paceline/internal/config"
	"github.com/loadline/paceline/internal/output"
	"github.com/loadline/paceline/internal/round"
	"github.com/loadline/paceline/internal/stats"
	"github.com/loadline/paceline/internal/worker"
)

var (
	runTxLatency time.Duration
	runTxJitter  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <plan>",
	Short: "Run a benchmark plan against a simulated workload",
	Long: `Run executes every round of a plan with the configured number of
workers. Transactions are simulated with a fixed latency plus jitter, so
the command exercises pacing behavior without a system under test.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := config.Load(args[0])
		if err != nil {
			return err
		}

		// fatih/color disables itself on non-TTY writers.
		scheme := output.DefaultColorScheme()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "plan %s: %d round(s), %d worker(s)\n", scheme.Highlight.Sprint(plan.Label), len(plan.Rounds), plan.Workers)

		for i := range plan.Rounds {
			r := plan.Rounds[i]
			fmt.Fprintf(out, "round %d %s (%s)\n", r.Index, scheme.Label.Sprint(r.Label), r.RateControl.Type)
			if err := runRound(cmd.Context(), out, &r, plan.Workers); err != nil {
				return err
			}
		}
		return nil
	},
}

func runRound(ctx context.Context, out io.Writer, r *round.Round, workers int) error {
	summaries := make([]stats.Summary, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			w := worker.New(idx)
			summaries[idx], errs[idx] = w.RunRound(ctx, r, simulatedTx)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("worker %d: %w", i, err)
		}
	}
	for i, s := range summaries {
		fmt.Fprintf(out, "  worker %d: submitted=%d ok=%d failed=%d p50=%v p99=%v\n",
			i, s.Submitted, s.Succeeded, s.Failed, s.P50Latency, s.P99Latency)
	}
	return nil
}

// simulatedTx stands in for a real transaction: it sleeps for the
// configured latency plus uniform jitter.
func simulatedTx(ctx context.Context) error {
	d := runTxLatency
	if runTxJitter > 0 {
		d += time.Duration(rand.Int63n(int64(runTxJitter)))
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func init() {
	runCmd.Flags().DurationVar(&runTxLatency, "tx-latency", 2*time.Millisecond, "simulated transaction latency")
	runCmd.Flags().DurationVar(&runTxJitter, "tx-jitter", time.Millisecond, "uniform jitter added to the simulated latency")
}
