// Package engine wires the ledger pipeline together: hierarchy loading,
// timeline parsing, classification, filtering, metrics and pivots.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/analysis"
	"github.com/Veraticus/spice-ledger/internal/classification"
	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/filter"
	"github.com/Veraticus/spice-ledger/internal/hierarchy"
	"github.com/Veraticus/spice-ledger/internal/metrics"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/timeline"
)

// Dataset is a loaded, classified timeline. It is read-only; queries return
// new slices.
type Dataset struct {
	Doc          *hierarchy.Document
	Index        *classification.Index
	Records      []model.ClassifiedRecord
	Periods      []model.Period
	Duplicates   []model.DuplicateWarning
	Unclassified []string
	Summary      analysis.Summary
}

// LoadConfig loads and validates the hierarchy document at path.
func LoadConfig(path string) (*hierarchy.Document, error) {
	return hierarchy.Load(path)
}

// LoadDataset parses the timeline CSV at path and classifies every record
// against doc.
func LoadDataset(ctx context.Context, path string, doc *hierarchy.Document) (*Dataset, error) {
	if doc == nil {
		return nil, fmt.Errorf("load dataset: %w", common.ErrMissingConfig)
	}
	t, err := timeline.LoadFile(path, optionsFor(doc))
	if err != nil {
		return nil, err
	}
	return build(ctx, t, doc)
}

// ReadDataset is LoadDataset for an already opened CSV.
func ReadDataset(ctx context.Context, r io.Reader, doc *hierarchy.Document) (*Dataset, error) {
	if doc == nil {
		return nil, fmt.Errorf("read dataset: %w", common.ErrMissingConfig)
	}
	t, err := timeline.LoadCSV(r, optionsFor(doc))
	if err != nil {
		return nil, err
	}
	return build(ctx, t, doc)
}

func optionsFor(doc *hierarchy.Document) timeline.Options {
	return timeline.Options{
		CategoryColumn: doc.CategoryColumn,
		Amounts: timeline.AmountFormat{
			Symbol:       doc.Currency.Symbol,
			ThousandsSep: doc.Currency.ThousandsSep,
			DecimalSep:   doc.Currency.DecimalSep,
		},
	}
}

// build classifies each distinct raw category name once and assembles every
// record against its classification. Names that only collide after
// normalization are classified separately and each unclassified one is
// reported. Mixed categories still resolve per record.
func build(ctx context.Context, t *timeline.Timeline, doc *hierarchy.Document) (*Dataset, error) {
	ds := &Dataset{
		Doc:        doc,
		Index:      classification.BuildIndex(doc),
		Periods:    t.Periods,
		Duplicates: timeline.ValidateDuplicates(t),
	}
	for _, w := range ds.Duplicates {
		common.LogWarn("Duplicate category names", common.Fields{
			"normalized": w.NormalizedKey,
			"names":      w.RawNames,
		})
	}

	long := timeline.ReshapeToLong(t, doc.TotalRowNames())

	cache := make(map[string]model.Classification)
	ds.Records = make([]model.ClassifiedRecord, 0, len(long))
	for i, rec := range long {
		if i%1024 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		key := strings.TrimSpace(rec.Category)
		c, seen := cache[key]
		if !seen {
			c = ds.Index.Classify(rec.Category)
			cache[key] = c
			if c.Unclassified() {
				ds.Unclassified = append(ds.Unclassified, rec.Category)
				slog.Warn("Unclassified category", "category", rec.Category)
			}
		}
		ds.Records = append(ds.Records, ds.Index.Assemble(rec, c))
	}

	ds.Summary = analysis.Summarize(ds.Records)
	slog.Info("Dataset ready",
		"records", len(ds.Records),
		"categories", ds.Summary.Categories,
		"periods", len(ds.Periods),
		"unclassified", len(ds.Unclassified),
		"duplicates", len(ds.Duplicates))
	return ds, nil
}

// ValidateDuplicates reports category names that normalize to one key.
func ValidateDuplicates(names []string) []model.DuplicateWarning {
	return timeline.DuplicateNames(names)
}

// ApplyFilter validates spec and returns the matching records.
func ApplyFilter(records []model.ClassifiedRecord, spec model.FilterSpec) ([]model.ClassifiedRecord, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return filter.Apply(records, spec), nil
}

// ComputeMetrics computes the full metric report for records.
func ComputeMetrics(records []model.ClassifiedRecord, doc *hierarchy.Document, balance decimal.Decimal) metrics.Report {
	return metrics.Compute(records, doc, balance)
}

// BuildPivot aggregates records by two dimensions.
func BuildPivot(records []model.ClassifiedRecord, rowDim, colDim analysis.Dimension, agg analysis.Aggregation) (*analysis.Pivot, error) {
	return analysis.BuildPivot(records, rowDim, colDim, agg)
}

// TopNExpenses returns the n largest expenses.
func TopNExpenses(records []model.ClassifiedRecord, n int) []model.ClassifiedRecord {
	return metrics.TopNExpenses(records, n)
}

// Query applies spec to the dataset's records.
func (d *Dataset) Query(spec model.FilterSpec) ([]model.ClassifiedRecord, error) {
	if d == nil {
		return nil, common.ErrNoDataset
	}
	return ApplyFilter(d.Records, spec)
}

// FilterOptions lists the values available to filter the dataset by.
func (d *Dataset) FilterOptions() filter.Options {
	return filter.AvailableOptions(d.Records)
}
