// Package analysis builds tabular views over classified records: pivots,
// monthly cash flow, group totals and dataset summaries, plus their
// terminal rendering.
package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Dimension is a record attribute a pivot can group by.
type Dimension string

// Pivot dimensions.
const (
	DimNone        Dimension = ""
	DimGroup       Dimension = "group"
	DimCategory    Dimension = "category"
	DimPrimary     Dimension = "primary_category"
	DimSubcategory Dimension = "subcategory"
	DimKind        Dimension = "kind"
	DimYear        Dimension = "year"
	DimMonth       Dimension = "month"
	DimQuarter     Dimension = "quarter"
	DimPeriod      Dimension = "period"
)

// Aggregation reduces the amounts of one pivot cell.
type Aggregation string

// Pivot aggregations.
const (
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// Pivot errors.
var (
	ErrUnknownDimension   = errors.New("unknown pivot dimension")
	ErrUnknownAggregation = errors.New("unknown aggregation")
)

// Dimensions lists the supported pivot dimensions.
func Dimensions() []Dimension {
	return []Dimension{DimGroup, DimCategory, DimPrimary, DimSubcategory, DimKind, DimYear, DimMonth, DimQuarter, DimPeriod}
}

// Aggregations lists the supported aggregations.
func Aggregations() []Aggregation {
	return []Aggregation{AggSum, AggMean, AggCount, AggMin, AggMax}
}

// ParseDimension validates a dimension name. An empty name is DimNone.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if d == DimNone {
		return d, nil
	}
	for _, known := range Dimensions() {
		if d == known {
			return d, nil
		}
	}
	return DimNone, fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// ParseAggregation validates an aggregation name. An empty name is sum.
func ParseAggregation(s string) (Aggregation, error) {
	if s == "" {
		return AggSum, nil
	}
	a := Aggregation(s)
	for _, known := range Aggregations() {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAggregation, s)
}

// Header is one row or column of a pivot. Key orders headers; Label is
// for display.
type Header struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

const noneLabel = "(none)"

// value returns the key and label of rec along d.
func (d Dimension) value(rec model.ClassifiedRecord) Header {
	switch d {
	case DimGroup:
		return Header{Key: rec.GroupKey(), Label: rec.GroupKey()}
	case DimCategory:
		return Header{Key: rec.Category, Label: rec.Category}
	case DimPrimary:
		return orNone(rec.PrimaryCategory)
	case DimSubcategory:
		return orNone(rec.Subcategory)
	case DimKind:
		return Header{Key: string(rec.Kind), Label: string(rec.Kind)}
	case DimYear:
		y := strconv.Itoa(rec.Year)
		return Header{Key: y, Label: y}
	case DimMonth:
		return Header{Key: fmt.Sprintf("%02d", rec.Month), Label: rec.MonthName}
	case DimQuarter:
		q := fmt.Sprintf("Q%d", rec.Quarter)
		return Header{Key: q, Label: q}
	case DimPeriod:
		k := rec.PeriodKey()
		return Header{Key: k, Label: k}
	default:
		return Header{Key: "total", Label: "Total"}
	}
}

func orNone(s string) Header {
	if s == "" {
		return Header{Key: noneLabel, Label: noneLabel}
	}
	return Header{Key: s, Label: s}
}

// Cell is one aggregated value. Count is the number of records behind it;
// a cell with Count 0 had no records.
type Cell struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}

// accumulator keeps what every aggregation needs, so totals can be
// re-aggregated from the underlying amounts instead of from cell results.
type accumulator struct {
	sum, min, max decimal.Decimal
	n             int
}

func (a *accumulator) add(v decimal.Decimal) {
	if a.n == 0 || v.LessThan(a.min) {
		a.min = v
	}
	if a.n == 0 || v.GreaterThan(a.max) {
		a.max = v
	}
	a.sum = a.sum.Add(v)
	a.n++
}

func (a *accumulator) cell(agg Aggregation) Cell {
	if a == nil || a.n == 0 {
		return Cell{Value: decimal.Zero}
	}
	c := Cell{Count: a.n}
	switch agg {
	case AggMean:
		c.Value = a.sum.Div(decimal.NewFromInt(int64(a.n)))
	case AggCount:
		c.Value = decimal.NewFromInt(int64(a.n))
	case AggMin:
		c.Value = a.min
	case AggMax:
		c.Value = a.max
	default:
		c.Value = a.sum
	}
	return c
}

// Pivot is a two-way aggregation of record amounts.
type Pivot struct {
	Cells     [][]Cell    `json:"cells"`
	RowTotals []Cell      `json:"row_totals"`
	ColTotals []Cell      `json:"column_totals"`
	Rows      []Header    `json:"rows"`
	Columns   []Header    `json:"columns"`
	Grand     Cell        `json:"grand_total"`
	RowDim    Dimension   `json:"row_dimension"`
	ColDim    Dimension   `json:"column_dimension"`
	Agg       Aggregation `json:"aggregation"`
}

// BuildPivot aggregates record amounts by rowDim and colDim. With colDim
// DimNone there is a single Total column. Temporal headers are ordered
// chronologically and the rest lexically. Records without a group land
// under the unclassified row or column.
func BuildPivot(records []model.ClassifiedRecord, rowDim, colDim Dimension, agg Aggregation) (*Pivot, error) {
	if rowDim == DimNone {
		return nil, fmt.Errorf("%w: row dimension is required", ErrUnknownDimension)
	}
	if _, err := ParseDimension(string(rowDim)); err != nil {
		return nil, err
	}
	if _, err := ParseDimension(string(colDim)); err != nil {
		return nil, err
	}
	if _, err := ParseAggregation(string(agg)); err != nil {
		return nil, err
	}
	if agg == "" {
		agg = AggSum
	}

	rows := newAxis()
	cols := newAxis()
	cells := make(map[[2]string]*accumulator)
	rowAcc := make(map[string]*accumulator)
	colAcc := make(map[string]*accumulator)
	var grand accumulator

	for _, rec := range records {
		r := rowDim.value(rec)
		c := colDim.value(rec)
		rows.add(r)
		cols.add(c)

		k := [2]string{r.Key, c.Key}
		if cells[k] == nil {
			cells[k] = &accumulator{}
		}
		cells[k].add(rec.Amount)
		if rowAcc[r.Key] == nil {
			rowAcc[r.Key] = &accumulator{}
		}
		rowAcc[r.Key].add(rec.Amount)
		if colAcc[c.Key] == nil {
			colAcc[c.Key] = &accumulator{}
		}
		colAcc[c.Key].add(rec.Amount)
		grand.add(rec.Amount)
	}

	p := &Pivot{
		RowDim:  rowDim,
		ColDim:  colDim,
		Agg:     agg,
		Rows:    rows.sorted(),
		Columns: cols.sorted(),
		Grand:   grand.cell(agg),
	}

	p.Cells = make([][]Cell, len(p.Rows))
	p.RowTotals = make([]Cell, len(p.Rows))
	for i, r := range p.Rows {
		p.Cells[i] = make([]Cell, len(p.Columns))
		for j, c := range p.Columns {
			p.Cells[i][j] = cells[[2]string{r.Key, c.Key}].cell(agg)
		}
		p.RowTotals[i] = rowAcc[r.Key].cell(agg)
	}
	p.ColTotals = make([]Cell, len(p.Columns))
	for j, c := range p.Columns {
		p.ColTotals[j] = colAcc[c.Key].cell(agg)
	}

	return p, nil
}

// Value returns the cell at row and column keys.
func (p *Pivot) Value(rowKey, colKey string) (Cell, bool) {
	for i, r := range p.Rows {
		if r.Key != rowKey {
			continue
		}
		for j, c := range p.Columns {
			if c.Key == colKey {
				return p.Cells[i][j], true
			}
		}
	}
	return Cell{}, false
}

type axis struct {
	seen    map[string]bool
	headers []Header
}

func newAxis() *axis {
	return &axis{seen: make(map[string]bool)}
}

func (a *axis) add(h Header) {
	if !a.seen[h.Key] {
		a.seen[h.Key] = true
		a.headers = append(a.headers, h)
	}
}

// sorted orders headers by key. Temporal keys are zero padded, so lexical
// order is chronological for them too.
func (a *axis) sorted() []Header {
	out := append([]Header(nil), a.headers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}
