package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/analysis"
	"github.com/Veraticus/spice-ledger/internal/cli"
	"github.com/Veraticus/spice-ledger/internal/format"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "List classified records",
		Long: `Print one line per (category, period) record after classification and
filtering.

Examples:
  # Every expense in March 2024
  ledger records --year 2024 --month March --type expense

  # Everything in the necesario group larger than 100.000
  ledger records --group necesario --min-abs 100000`,
		RunE: runRecords,
	}
	addFilterFlags(cmd)
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runRecords(cmd *cobra.Command, _ []string) error {
	s, records, done, err := selectRecords(cmd, "Listing")
	if err != nil || done {
		return err
	}
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, records)
	}

	cur := format.NewCurrency(s.dataset.Doc.Currency)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tCategory\tGroup\tPrimary\tKind\tAmount\t")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.PeriodKey(),
			r.Category,
			r.GroupKey(),
			r.PrimaryCategory,
			r.Kind,
			cur.Format(r.Amount, true))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	net := analysis.Summarize(records).Totals.Net
	fmt.Fprintf(out, "\n%s  Net %s\n",
		cli.StyleSubtle(fmt.Sprintf("%d records", len(records))),
		cli.StyleAmount(cur.Format(net, true), net.IsNegative()))
	return nil
}

func optionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the values available to filter by",
		RunE:  runOptions,
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runOptions(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), "Listing")
	if err != nil {
		return err
	}
	opts := s.dataset.FilterOptions()
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, opts)
	}

	years := make([]string, 0, len(opts.Years))
	for _, y := range opts.Years {
		years = append(years, strconv.Itoa(y))
	}
	content := strings.Join([]string{
		"Years:      " + strings.Join(years, ", "),
		"Months:     " + strings.Join(opts.Months, ", "),
		"Groups:     " + strings.Join(opts.Groups, ", "),
		"Categories: " + strings.Join(opts.Categories, ", "),
	}, "\n")
	fmt.Fprintln(out, cli.RenderBox("Filter Options", content))
	return nil
}
