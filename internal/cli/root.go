// Package cli implements the paceline command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "paceline",
	Short:   "Rate-control toolkit for distributed load generation",
	Version: version,
	Long: `Paceline is the rate-control subsystem of a distributed load-generation
harness: it decides, for each worker driving a benchmark round, when the
next transaction may be submitted. The CLI runs plans against a simulated
workload and works with recorded timing traces.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command with its registered subcommands.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(traceCmd)
}
