package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period is one column of the timeline: an inclusive calendar range.
type Period struct {
	Start  time.Time
	End    time.Time
	Header string
}

// Key returns the year-month of the period start, e.g. "2024-01".
func (p Period) Key() string {
	return p.Start.Format("2006-01")
}

// LongRecord is one (category, period) observation of the timeline.
// Amount is taken verbatim from the source: negative is an expense,
// positive is income.
type LongRecord struct {
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	MonthName   string          `json:"month_name"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Quarter     int             `json:"quarter"`
}

// PeriodKey returns the year-month of the record's period start.
func (r LongRecord) PeriodKey() string {
	return fmt.Sprintf("%04d-%02d", r.Year, r.Month)
}

// IsExpense reports whether the amount is negative.
func (r LongRecord) IsExpense() bool {
	return r.Amount.IsNegative()
}

// IsIncome reports whether the amount is positive.
func (r LongRecord) IsIncome() bool {
	return r.Amount.IsPositive()
}

// ClassifiedRecord is a LongRecord joined with its classification.
// Kind is always resolved to expense, income or unclassified; Mixed keeps
// the fact that the direction came from the amount sign.
type ClassifiedRecord struct {
	MatchedRule *RuleRef `json:"matched_rule,omitempty"`
	LongRecord
	GroupID         string      `json:"group_id"`
	GroupName       string      `json:"group_name"`
	PrimaryCategory string      `json:"primary_category"`
	Subcategory     string      `json:"subcategory,omitempty"`
	Kind            GroupKind   `json:"kind"`
	Tier            Tier        `json:"tier,omitempty"`
	Source          MatchSource `json:"source"`
	Mixed           bool        `json:"mixed"`
}

// GroupKey returns the group id, or the unclassified bucket key.
func (r ClassifiedRecord) GroupKey() string {
	if r.GroupID == "" {
		return UnclassifiedGroup
	}
	return r.GroupID
}

// DuplicateWarning reports category names that collapse to the same key.
type DuplicateWarning struct {
	NormalizedKey string   `json:"normalized_key"`
	RawNames      []string `json:"raw_names"`
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name of month m (1-12), or "" when out of range.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// MonthNumber returns the month (1-12) for a name, case-insensitive, or 0.
func MonthNumber(name string) int {
	for i, n := range monthNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return i + 1
		}
	}
	return 0
}

// QuarterOf returns the calendar quarter (1-4) of month m.
func QuarterOf(m int) int {
	return (m-1)/3 + 1
}
