package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the serialized form of calendar dates.
const DateLayout = "2006-01-02"

// TransactionType restricts records by the sign of their amount.
type TransactionType string

// Transaction type constants.
const (
	TransactionAll     TransactionType = "all"
	TransactionExpense TransactionType = "expense"
	TransactionIncome  TransactionType = "income"
)

// Filter validation errors.
var (
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
	ErrInvalidAmountRange = errors.New("amount_min must not exceed amount_max")
	ErrInvalidTxnType     = errors.New("invalid transaction type")
	ErrInvalidMonth       = errors.New("invalid month name")
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls on or between From and To (by date).
func (r DateRange) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(r.From)) && !d.After(truncateDay(r.To))
}

// MarshalJSON encodes the range as ["YYYY-MM-DD", "YYYY-MM-DD"].
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{r.From.Format(DateLayout), r.To.Format(DateLayout)})
}

// UnmarshalJSON decodes a two-element date array.
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw [2]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode date range: %w", err)
	}
	from, err := time.Parse(DateLayout, raw[0])
	if err != nil {
		return fmt.Errorf("invalid range start %q: %w", raw[0], err)
	}
	to, err := time.Parse(DateLayout, raw[1])
	if err != nil {
		return fmt.Errorf("invalid range end %q: %w", raw[1], err)
	}
	r.From, r.To = from, to
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterSpec is a declarative record filter. Every unset dimension keeps
// all records; set dimensions are AND-combined and values within one
// dimension are OR-combined.
type FilterSpec struct {
	DateRange       *DateRange       `json:"date_range,omitempty"`
	AmountMin       *decimal.Decimal `json:"amount_min,omitempty"`
	AmountMax       *decimal.Decimal `json:"amount_max,omitempty"`
	MinAbsAmount    *decimal.Decimal `json:"min_abs_amount,omitempty"`
	TransactionType TransactionType  `json:"transaction_type,omitempty"`
	Years           []int            `json:"years,omitempty"`
	Months          []string         `json:"months,omitempty"`
	Groups          []string         `json:"groups,omitempty"`
	Categories      []string         `json:"categories,omitempty"`
}

// IsEmpty reports whether the spec keeps every record.
func (f FilterSpec) IsEmpty() bool {
	return f.DateRange == nil &&
		f.AmountMin == nil &&
		f.AmountMax == nil &&
		f.MinAbsAmount == nil &&
		(f.TransactionType == "" || f.TransactionType == TransactionAll) &&
		len(f.Years) == 0 &&
		len(f.Months) == 0 &&
		len(f.Groups) == 0 &&
		len(f.Categories) == 0
}

// Validate checks the spec for contradictory or unknown values.
func (f FilterSpec) Validate() error {
	if f.DateRange != nil && truncateDay(f.DateRange.From).After(truncateDay(f.DateRange.To)) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange,
			f.DateRange.From.Format(DateLayout), f.DateRange.To.Format(DateLayout))
	}
	if f.AmountMin != nil && f.AmountMax != nil && f.AmountMin.GreaterThan(*f.AmountMax) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidAmountRange, f.AmountMin, f.AmountMax)
	}
	switch f.TransactionType {
	case "", TransactionAll, TransactionExpense, TransactionIncome:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTxnType, f.TransactionType)
	}
	for _, m := range f.Months {
		if MonthNumber(m) == 0 {
			return fmt.Errorf("%w: %q", ErrInvalidMonth, m)
		}
	}
	return nil
}

// ParseFilterSpec decodes and validates a serialized FilterSpec.
func ParseFilterSpec(data []byte) (FilterSpec, error) {
	var spec FilterSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return FilterSpec{}, fmt.Errorf("failed to decode filter: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return FilterSpec{}, err
	}
	return spec, nil
}
