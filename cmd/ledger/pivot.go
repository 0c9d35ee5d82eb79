package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/analysis"
	"github.com/Veraticus/spice-ledger/internal/engine"
)

func pivotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pivot",
		Short: "Aggregate records by two dimensions",
		Long: fmt.Sprintf(`Build a pivot table of record amounts.

Dimensions: %s
Aggregations: %s

Examples:
  ledger pivot --rows group --cols month
  ledger pivot --rows primary_category --cols year --agg mean --type expense`,
			joinDimensions(analysis.Dimensions()),
			joinAggregations(analysis.Aggregations())),
		RunE: runPivot,
	}
	addFilterFlags(cmd)
	cmd.Flags().String("rows", string(analysis.DimGroup), "row dimension")
	cmd.Flags().String("cols", string(analysis.DimMonth), "column dimension (empty for a single total column)")
	cmd.Flags().String("agg", string(analysis.AggSum), "aggregation")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runPivot(cmd *cobra.Command, _ []string) error {
	rowsFlag, _ := cmd.Flags().GetString("rows")
	colsFlag, _ := cmd.Flags().GetString("cols")
	aggFlag, _ := cmd.Flags().GetString("agg")

	rowDim, err := analysis.ParseDimension(rowsFlag)
	if err != nil {
		return err
	}
	colDim, err := analysis.ParseDimension(colsFlag)
	if err != nil {
		return err
	}
	agg, err := analysis.ParseAggregation(aggFlag)
	if err != nil {
		return err
	}

	s, records, done, err := selectRecords(cmd, "Pivot")
	if err != nil || done {
		return err
	}

	p, err := engine.BuildPivot(records, rowDim, colDim, agg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, p)
	}
	fmt.Fprintln(out, newFormatter(s.dataset.Doc, out).FormatPivot(p))
	return nil
}

func joinDimensions(dims []analysis.Dimension) string {
	names := make([]string, 0, len(dims))
	for _, d := range dims {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

func joinAggregations(aggs []analysis.Aggregation) string {
	names := make([]string, 0, len(aggs))
	for _, a := range aggs {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}
