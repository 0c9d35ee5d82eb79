package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/analysis"
	"github.com/Veraticus/spice-ledger/internal/engine"
)

func metricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Financial health report for the selected records",
		Long: `Compute savings rate, emergency runway, spending mix, a 0-100 health score
and prioritized insights over the filtered records.

The runway uses the configured balance (--balance, LEDGER_BALANCE or
"balance" in config.yaml).`,
		RunE: runMetrics,
	}
	addFilterFlags(cmd)
	cmd.Flags().Bool("flow", false, "also show monthly income and expense flow")
	cmd.Flags().Bool("groups", false, "also show totals per group")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	s, records, done, err := selectRecords(cmd, "Analysis")
	if err != nil || done {
		return err
	}
	out := cmd.OutOrStdout()
	report := engine.ComputeMetrics(records, s.dataset.Doc, s.settings.Balance)

	showFlow, _ := cmd.Flags().GetBool("flow")
	showGroups, _ := cmd.Flags().GetBool("groups")

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		payload := map[string]any{"report": report}
		if showFlow {
			payload["flow"] = analysis.MonthlyFlow(records)
		}
		if showGroups {
			payload["groups"] = analysis.GroupTotals(records)
		}
		return writeJSON(out, payload)
	}

	f := newFormatter(s.dataset.Doc, out)
	fmt.Fprintln(out, f.FormatReport(report))
	if showGroups {
		fmt.Fprintln(out, f.FormatGroups(analysis.GroupTotals(records)))
	}
	if showFlow {
		fmt.Fprintln(out, f.FormatFlow(analysis.MonthlyFlow(records)))
	}
	return nil
}
