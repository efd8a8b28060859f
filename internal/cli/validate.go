package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/loadline/paceline/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan>",
	Short: "Validate a benchmark plan and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if _, err := config.Parse(data); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", errorIcon(), err)
			return err
		}

		normalized, err := config.NormalizeJSON(data)
		if err != nil {
			return err
		}

		doc := gjson.ParseBytes(normalized)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s plan is valid\n", successIcon())
		fmt.Fprintf(out, "label:   %s\n", doc.Get("label").String())
		fmt.Fprintf(out, "workers: %d\n", doc.Get("workers").Int())
		fmt.Fprintf(out, "rounds:  %d\n", doc.Get("rounds.#").Int())
		for i, t := range doc.Get("rounds.#.rateControl.type").Array() {
			label := doc.Get(fmt.Sprintf("rounds.%d.label", i)).String()
			fmt.Fprintf(out, "  %d. %-20s %s\n", i, label, t.String())
		}
		return nil
	},
}
