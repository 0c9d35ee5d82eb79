package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/cli"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the hierarchy and timeline for problems",
		Long: `Load the hierarchy and the timeline and report data quality problems:
category names that collide after normalization and categories no rule
classifies. Both are warnings; the command fails only when the inputs cannot
be loaded at all.`,
		RunE: runValidate,
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), "Validation")
	if err != nil {
		return err
	}
	ds := s.dataset
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{
			"hierarchy":    ds.Doc.Path,
			"version":      ds.Doc.Version,
			"patterns":     ds.Index.PatternCount(),
			"records":      len(ds.Records),
			"periods":      len(ds.Periods),
			"duplicates":   ds.Duplicates,
			"unclassified": ds.Unclassified,
		})
	}

	f := newFormatter(ds.Doc, out)
	fmt.Fprintln(out, cli.FormatTitle("Validating "+ds.Doc.Path))
	fmt.Fprintln(out, f.FormatSummary(ds.Summary))
	fmt.Fprintln(out, f.FormatDuplicates(ds.Duplicates))
	fmt.Fprintln(out, f.FormatUnclassified(ds.Unclassified))

	if len(ds.Duplicates) == 0 && len(ds.Unclassified) == 0 {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d records classified with %d patterns", len(ds.Records), ds.Index.PatternCount())))
	} else {
		fmt.Fprintln(out, cli.StyleWarning(fmt.Sprintf("%d duplicate and %d unclassified names need attention",
			len(ds.Duplicates), len(ds.Unclassified))))
		slog.Warn("Validation finished with warnings",
			"duplicates", len(ds.Duplicates),
			"unclassified", len(ds.Unclassified))
	}
	return nil
}
