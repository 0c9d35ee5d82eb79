// Package timeline reads the wide category-by-period CSV export and turns it
// into long records.
package timeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options control how a timeline is parsed.
type Options struct {
	// CategoryColumn is the required first header, compared after
	// normalization.
	CategoryColumn string
	Amounts        AmountFormat
}

// Cell is one amount of a row. Valid is false when the source cell was
// blank or not a number.
type Cell struct {
	Amount decimal.Decimal
	Valid  bool
}

// Row is one category of the wide table.
type Row struct {
	Category string
	Cells    []Cell
	Line     int
}

// Timeline is the parsed wide table. It is read-only once loaded.
type Timeline struct {
	Column  string
	Periods []model.Period
	Rows    []Row
}

// LoadFile opens path and parses it with LoadCSV.
func LoadFile(path string, opts Options) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &common.LoadError{Err: common.ErrNotFound, Reason: fmt.Sprintf("file %s not found", path)}
		}
		return nil, &common.LoadError{Err: err, Reason: "failed to open " + path}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close timeline file", "path", path, "error", closeErr)
		}
	}()

	t, err := LoadCSV(f, opts)
	if err != nil {
		return nil, err
	}

	slog.Info("Loaded timeline",
		"path", path,
		"rows", len(t.Rows),
		"periods", len(t.Periods))
	return t, nil
}

// LoadCSV parses a UTF-8 wide timeline. The first header must match the
// category column; every other header must parse as a period. Structural
// problems are returned as *common.LoadError.
func LoadCSV(r io.Reader, opts Options) (*Timeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &common.LoadError{Err: err, Reason: "failed to read input"}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &common.LoadError{Line: invalidUTF8Line(data), Reason: "input is not valid UTF-8"}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &common.LoadError{Line: 1, Reason: "file is empty"}
		}
		return nil, csvError(err)
	}

	if opts.Amounts == (AmountFormat{}) {
		opts.Amounts = DefaultAmountFormat
	}

	column := opts.CategoryColumn
	if column == "" {
		column = "Categorías"
	}
	if !common.SameName(header[0], column) {
		return nil, &common.LoadError{
			Line:   1,
			Column: 1,
			Header: header[0],
			Reason: fmt.Sprintf("first column must be %q", column),
		}
	}
	if len(header) < 2 {
		return nil, &common.LoadError{Line: 1, Reason: "no period columns"}
	}

	t := &Timeline{Column: strings.TrimSpace(header[0])}
	seen := make(map[string]int, len(header)-1)
	for i, h := range header[1:] {
		p, err := ParsePeriod(h)
		if err != nil {
			return nil, &common.LoadError{Line: 1, Column: i + 2, Header: h, Reason: err.Error()}
		}
		if prev, dup := seen[p.Start.Format(dayLayout)+p.End.Format(dayLayout)]; dup {
			return nil, &common.LoadError{
				Line:   1,
				Column: i + 2,
				Header: h,
				Reason: fmt.Sprintf("duplicates period of column %d", prev),
			}
		}
		seen[p.Start.Format(dayLayout)+p.End.Format(dayLayout)] = i + 2
		t.Periods = append(t.Periods, p)
	}

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := reader.FieldPos(0)

		name := fields[0]
		if strings.TrimSpace(name) == "" {
			slog.Warn("Skipping timeline row without a category", "line", line)
			continue
		}

		row := Row{Category: name, Line: line, Cells: make([]Cell, len(t.Periods))}
		for i := range t.Periods {
			raw := fields[i+1]
			amount, ok := ParseAmount(raw, opts.Amounts)
			if !ok && strings.TrimSpace(raw) != "" {
				slog.Debug("Ignoring non-numeric cell",
					"line", line,
					"category", name,
					"period", t.Periods[i].Header,
					"value", raw)
			}
			row.Cells[i] = Cell{Amount: amount, Valid: ok}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		reason := perr.Err.Error()
		if errors.Is(perr.Err, csv.ErrFieldCount) {
			reason = "row has a different number of cells than the header"
		}
		return &common.LoadError{Err: err, Line: perr.Line, Column: perr.Column, Reason: reason}
	}
	return &common.LoadError{Err: err, Reason: err.Error()}
}

func invalidUTF8Line(data []byte) int {
	line := 1
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			return line
		}
		if r == '\n' {
			line++
		}
		data = data[size:]
	}
	return line
}

// Categories returns the raw category names in row order.
func (t *Timeline) Categories() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Category
	}
	return out
}

// ValidateDuplicates reports every normalized name shared by more than one
// distinct raw name, in order of first appearance. It never fails: callers
// surface the warnings.
func ValidateDuplicates(t *Timeline) []model.DuplicateWarning {
	return DuplicateNames(t.Categories())
}

// DuplicateNames groups names by normalized key and reports the collisions.
func DuplicateNames(names []string) []model.DuplicateWarning {
	var order []string
	byKey := make(map[string][]string)
	for _, name := range names {
		key := common.Normalize(name)
		raws, seen := byKey[key]
		if !seen {
			order = append(order, key)
		}
		if !contains(raws, name) {
			byKey[key] = append(raws, name)
		}
	}

	var out []model.DuplicateWarning
	for _, key := range order {
		if raws := byKey[key]; len(raws) > 1 {
			out = append(out, model.DuplicateWarning{NormalizedKey: key, RawNames: raws})
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ReshapeToLong emits one record per valid cell, skipping rows whose name
// normalizes to one of exclude. Records are ordered by period start, then
// category name; rows sharing a name keep their source order.
func ReshapeToLong(t *Timeline, exclude []string) []model.LongRecord {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[common.Normalize(name)] = true
	}

	var out []model.LongRecord
	for _, row := range t.Rows {
		if skip[common.Normalize(row.Category)] {
			continue
		}
		for i, cell := range row.Cells {
			if !cell.Valid {
				continue
			}
			p := t.Periods[i]
			out = append(out, DeriveTemporal(model.LongRecord{
				Category:    row.Category,
				PeriodStart: p.Start,
				PeriodEnd:   p.End,
				Amount:      cell.Amount,
			}))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return out[i].Category < out[j].Category
	})
	return out
}
