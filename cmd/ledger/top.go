package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/engine"
)

func topCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the largest expenses",
		RunE:  runTop,
	}
	addFilterFlags(cmd)
	cmd.Flags().IntP("count", "n", 10, "number of expenses to show")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runTop(cmd *cobra.Command, _ []string) error {
	n, _ := cmd.Flags().GetInt("count")
	if n <= 0 {
		return fmt.Errorf("--count must be positive, got %d", n)
	}

	s, records, done, err := selectRecords(cmd, "Ranking")
	if err != nil || done {
		return err
	}

	top := engine.TopNExpenses(records, n)
	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, top)
	}
	fmt.Fprintln(out, newFormatter(s.dataset.Doc, out).FormatTop(top))
	return nil
}
