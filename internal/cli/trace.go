package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loadline/paceline/internal/output"
	"github.com/loadline/paceline/internal/trace"
)

var (
	traceInspectFormat string
	traceConvertFrom   string
	traceConvertTo     string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect and convert recorded timing traces",
}

var traceInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print a summary of a recorded trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, ok := trace.ParseFormat(traceInspectFormat)
		if !ok {
			return fmt.Errorf("unsupported trace format %q", traceInspectFormat)
		}
		records, err := trace.Read(args[0], format)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "records: %d\n", len(records))
		if len(records) > 0 {
			fmt.Fprintf(out, "first:   %dms\n", records[0])
			fmt.Fprintf(out, "last:    %dms\n", records[len(records)-1])
		}
		return nil
	},
}

var traceConvertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Re-encode a trace between the text and binary formats",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, ok := trace.ParseFormat(traceConvertFrom)
		if !ok {
			return fmt.Errorf("unsupported trace format %q", traceConvertFrom)
		}
		to, ok := trace.ParseFormat(traceConvertTo)
		if !ok {
			return fmt.Errorf("unsupported trace format %q", traceConvertTo)
		}

		records, err := trace.Read(args[0], from)
		if err != nil {
			return err
		}
		if err := trace.Write(args[1], to, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %d record(s) to %s\n", successIcon(), len(records), args[1])
		return nil
	},
}

func successIcon() string { return output.SuccessIcon(true) }
func errorIcon() string   { return output.ErrorIcon(true) }

func init() {
	traceInspectCmd.Flags().StringVar(&traceInspectFormat, "format", "TEXT", "trace format: TEXT, BINARY_LE, BINARY_BE")
	traceConvertCmd.Flags().StringVar(&traceConvertFrom, "from", "TEXT", "input trace format")
	traceConvertCmd.Flags().StringVar(&traceConvertTo, "to", "BINARY_LE", "output trace format")
	traceCmd.AddCommand(traceInspectCmd)
	traceCmd.AddCommand(traceConvertCmd)
}
