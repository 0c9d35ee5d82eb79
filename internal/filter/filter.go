// Package filter narrows classified records with a declarative FilterSpec.
package filter

import (
	"sort"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// predicate reports whether a record survives one filter dimension.
type predicate func(model.ClassifiedRecord) bool

// Apply returns the records matching every set dimension of spec. Dimensions
// run in a fixed order: dates (range, years, months), groups, categories,
// amount bounds, transaction type. The result is a new slice in input order;
// records is never modified.
func Apply(records []model.ClassifiedRecord, spec model.FilterSpec) []model.ClassifiedRecord {
	preds := compile(spec)

	out := make([]model.ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		if matches(rec, preds) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec model.ClassifiedRecord, preds []predicate) bool {
	for _, p := range preds {
		if !p(rec) {
			return false
		}
	}
	return true
}

// compile builds the predicates of the set dimensions, in evaluation order.
func compile(spec model.FilterSpec) []predicate {
	var preds []predicate

	if spec.DateRange != nil {
		r := *spec.DateRange
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return r.Contains(rec.PeriodStart)
		})
	}

	if len(spec.Years) > 0 {
		years := make(map[int]bool, len(spec.Years))
		for _, y := range spec.Years {
			years[y] = true
		}
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return years[rec.Year]
		})
	}

	if len(spec.Months) > 0 {
		months := make(map[int]bool, len(spec.Months))
		for _, m := range spec.Months {
			months[model.MonthNumber(m)] = true
		}
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return months[rec.Month]
		})
	}

	if len(spec.Groups) > 0 {
		groups := normalizedSet(spec.Groups)
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return groups[common.Normalize(rec.GroupKey())]
		})
	}

	if len(spec.Categories) > 0 {
		cats := normalizedSet(spec.Categories)
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return cats[common.Normalize(rec.Category)] ||
				cats[common.Normalize(rec.PrimaryCategory)]
		})
	}

	if spec.AmountMin != nil {
		lo := *spec.AmountMin
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return rec.Amount.GreaterThanOrEqual(lo)
		})
	}
	if spec.AmountMax != nil {
		hi := *spec.AmountMax
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return rec.Amount.LessThanOrEqual(hi)
		})
	}
	if spec.MinAbsAmount != nil {
		floor := spec.MinAbsAmount.Abs()
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return rec.Amount.Abs().GreaterThan(floor)
		})
	}

	switch spec.TransactionType {
	case model.TransactionExpense:
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return rec.IsExpense()
		})
	case model.TransactionIncome:
		preds = append(preds, func(rec model.ClassifiedRecord) bool {
			return rec.IsIncome()
		})
	}

	return preds
}

func normalizedSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[common.Normalize(item)] = true
	}
	return set
}

// Options lists the values present in a record set, for building filter
// choices. Months are in calendar order, years ascending, groups in
// first-seen order and categories sorted.
type Options struct {
	Years      []int    `json:"years"`
	Months     []string `json:"months"`
	Groups     []string `json:"groups"`
	Categories []string `json:"categories"`
}

// AvailableOptions collects the filter choices of records.
func AvailableOptions(records []model.ClassifiedRecord) Options {
	years := make(map[int]bool)
	months := make(map[int]bool)
	groups := make(map[string]bool)
	cats := make(map[string]bool)

	var opts Options
	for _, rec := range records {
		years[rec.Year] = true
		months[rec.Month] = true
		if g := rec.GroupKey(); !groups[g] {
			groups[g] = true
			opts.Groups = append(opts.Groups, g)
		}
		cats[rec.Category] = true
	}

	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)

	for m := 1; m <= 12; m++ {
		if months[m] {
			opts.Months = append(opts.Months, model.MonthName(m))
		}
	}

	for c := range cats {
		opts.Categories = append(opts.Categories, c)
	}
	sort.Strings(opts.Categories)

	return opts
}
