package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-ledger/internal/config"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// addFilterFlags registers the record filter flags on cmd.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first period start date to include (YYYY-MM-DD)")
	cmd.Flags().String("to", "", "last period start date to include (YYYY-MM-DD)")
	cmd.Flags().IntSlice("year", nil, "years to include (repeatable)")
	cmd.Flags().StringSlice("month", nil, "month names to include, e.g. January (repeatable)")
	cmd.Flags().StringSlice("group", nil, "group ids to include (repeatable)")
	cmd.Flags().StringSlice("category", nil, "category names to include (repeatable)")
	cmd.Flags().String("min", "", "minimum signed amount")
	cmd.Flags().String("max", "", "maximum signed amount")
	cmd.Flags().String("min-abs", "", "minimum amount magnitude")
	cmd.Flags().String("type", "all", "transaction type (all, expense, income)")
	cmd.Flags().String("filter-file", "", "JSON filter spec; flags override its fields")
	cmd.Flags().Bool("print-filter", false, "print the effective filter as JSON and exit")
}

// filterFromFlags builds the FilterSpec described by cmd's filter flags.
// A --filter-file is read first and every flag that was set replaces the
// matching field.
func filterFromFlags(cmd *cobra.Command) (model.FilterSpec, error) {
	var spec model.FilterSpec
	flags := cmd.Flags()

	if path, _ := flags.GetString("filter-file"); path != "" {
		data, err := os.ReadFile(config.ExpandPath(path))
		if err != nil {
			return spec, fmt.Errorf("failed to read filter file: %w", err)
		}
		if spec, err = model.ParseFilterSpec(data); err != nil {
			return spec, err
		}
	}

	if flags.Changed("from") || flags.Changed("to") {
		from, _ := flags.GetString("from")
		to, _ := flags.GetString("to")
		dr, err := dateRange(from, to, spec.DateRange)
		if err != nil {
			return spec, err
		}
		spec.DateRange = dr
	}
	if flags.Changed("year") {
		spec.Years, _ = flags.GetIntSlice("year")
	}
	if flags.Changed("month") {
		spec.Months, _ = flags.GetStringSlice("month")
	}
	if flags.Changed("group") {
		spec.Groups, _ = flags.GetStringSlice("group")
	}
	if flags.Changed("category") {
		spec.Categories, _ = flags.GetStringSlice("category")
	}

	amounts := []struct {
		flag string
		dst  **decimal.Decimal
	}{
		{"min", &spec.AmountMin},
		{"max", &spec.AmountMax},
		{"min-abs", &spec.MinAbsAmount},
	}
	for _, a := range amounts {
		if !flags.Changed(a.flag) {
			continue
		}
		raw, _ := flags.GetString(a.flag)
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return spec, fmt.Errorf("invalid --%s %q: %w", a.flag, raw, err)
		}
		*a.dst = &d
	}

	if flags.Changed("type") {
		kind, _ := flags.GetString("type")
		spec.TransactionType = model.TransactionType(strings.ToLower(kind))
	}

	if err := spec.Validate(); err != nil {
		return spec, err
	}
	return spec, nil
}

// dateRange completes a partial range: a missing bound keeps the base bound
// or stays open.
func dateRange(from, to string, base *model.DateRange) (*model.DateRange, error) {
	dr := model.DateRange{
		From: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	if base != nil {
		dr = *base
	}
	if from != "" {
		t, err := time.Parse(model.DateLayout, from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date (use YYYY-MM-DD): %w", err)
		}
		dr.From = t
	}
	if to != "" {
		t, err := time.Parse(model.DateLayout, to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date (use YYYY-MM-DD): %w", err)
		}
		dr.To = t
	}
	return &dr, nil
}

// selectRecords loads the session and applies the filter flags. It reports
// done=true when --print-filter already produced the output.
func selectRecords(cmd *cobra.Command, operation string) (*session, []model.ClassifiedRecord, bool, error) {
	spec, err := filterFromFlags(cmd)
	if err != nil {
		return nil, nil, false, err
	}
	if printOnly, _ := cmd.Flags().GetBool("print-filter"); printOnly {
		return nil, nil, true, writeJSON(cmd.OutOrStdout(), spec)
	}

	s, err := openSession(cmd.Context(), operation)
	if err != nil {
		return nil, nil, false, err
	}
	records, err := s.dataset.Query(spec)
	if err != nil {
		return nil, nil, false, err
	}
	return s, records, false, nil
}
