package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/budget"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Suggest monthly budgets from spending history",
		Long: `Suggest a monthly budget per expense category from the selected records and
show how the latest month tracks against it.

Methods:
  auto          pick by volatility (3-month average, 75th or 90th percentile)
  conservative  90th percentile
  moderate      blend of averages and the 75th percentile
  aggressive    3-month average

Use --category to describe one category's spending pattern instead.`,
		RunE: runBudget,
	}
	addFilterFlags(cmd)
	cmd.Flags().String("method", string(budget.MethodAuto), "suggestion method (auto, conservative, moderate, aggressive)")
	cmd.Flags().String("pattern", "", "describe the spending pattern of one category")
	cmd.Flags().String("period", "", "month to track against the budgets (YYYY-MM, default: latest)")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runBudget(cmd *cobra.Command, _ []string) error {
	methodFlag, _ := cmd.Flags().GetString("method")
	method, err := budget.ParseMethod(methodFlag)
	if err != nil {
		return err
	}

	s, records, done, err := selectRecords(cmd, "Budgeting")
	if err != nil || done {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	f := newFormatter(s.dataset.Doc, out)
	calc := budget.NewCalculator(records)

	if category, _ := cmd.Flags().GetString("pattern"); category != "" {
		p, err := calc.SpendingPattern(category)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(out, p)
		}
		fmt.Fprintln(out, f.FormatPattern(p))
		return nil
	}

	suggestions, err := calc.SuggestAll(method)
	if err != nil {
		return err
	}

	period, _ := cmd.Flags().GetString("period")
	if period == "" {
		if periods := calc.Periods(); len(periods) > 0 {
			period = periods[len(periods)-1]
		}
	}

	var progress *budget.Summary
	if period != "" && len(suggestions) > 0 {
		summary := budget.Summarize(budget.Allocations(suggestions), budget.SpentIn(records, period))
		progress = &summary
	}

	if asJSON {
		return writeJSON(out, map[string]any{
			"method":      method,
			"period":      period,
			"suggestions": suggestions,
			"progress":    progress,
		})
	}
	fmt.Fprintln(out, f.FormatBudgets(suggestions, progress, period))
	return nil
}
