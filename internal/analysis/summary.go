package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/metrics"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Summary describes a record set at a glance.
type Summary struct {
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	Totals     metrics.Totals `json:"totals"`
	Records    int            `json:"records"`
	Categories int            `json:"categories"`
	Periods    int            `json:"periods"`
	Groups     int            `json:"groups"`
}

// Summarize counts records, distinct categories, periods and groups, and
// spans the covered dates. Categories are counted by raw name, so names
// that only collide after normalization count separately.
func Summarize(records []model.ClassifiedRecord) Summary {
	s := Summary{Records: len(records), Totals: metrics.SumTotals(records)}

	categories := make(map[string]bool)
	periods := make(map[string]bool)
	groups := make(map[string]bool)
	for i, r := range records {
		categories[strings.TrimSpace(r.Category)] = true
		periods[r.PeriodKey()] = true
		groups[r.GroupKey()] = true
		if i == 0 || r.PeriodStart.Before(s.From) {
			s.From = r.PeriodStart
		}
		if i == 0 || r.PeriodEnd.After(s.To) {
			s.To = r.PeriodEnd
		}
	}
	s.Categories = len(categories)
	s.Periods = len(periods)
	s.Groups = len(groups)
	return s
}

// MonthFlow is income and expense for one calendar month.
type MonthFlow struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
	Key     string          `json:"key"`
	Year    int             `json:"year"`
	Month   int             `json:"month"`
}

// MonthlyFlow totals records per month in chronological order.
func MonthlyFlow(records []model.ClassifiedRecord) []MonthFlow {
	byKey := make(map[string][]model.ClassifiedRecord)
	for _, r := range records {
		byKey[r.PeriodKey()] = append(byKey[r.PeriodKey()], r)
	}

	out := make([]MonthFlow, 0, len(byKey))
	for key, recs := range byKey {
		t := metrics.SumTotals(recs)
		out = append(out, MonthFlow{
			Key:     key,
			Year:    recs[0].Year,
			Month:   recs[0].Month,
			Income:  t.Income,
			Expense: t.Expense,
			Net:     t.Net,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// GroupTotal is the activity of one classification group.
type GroupTotal struct {
	Amount  decimal.Decimal `json:"amount"`
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
	GroupID string          `json:"group_id"`
	Name    string          `json:"name"`
	Kind    model.GroupKind `json:"kind"`
	// Share is the group's percentage of all expense (0-100).
	Share   float64 `json:"share"`
	Records int     `json:"records"`
}

// GroupTotals totals records per group, largest absolute amount first.
// Records without a group are reported under the unclassified key.
func GroupTotals(records []model.ClassifiedRecord) []GroupTotal {
	byGroup := make(map[string]*GroupTotal)
	var order []string
	totalExpense := decimal.Zero

	for _, r := range records {
		key := r.GroupKey()
		g, ok := byGroup[key]
		if !ok {
			g = &GroupTotal{GroupID: key, Name: r.GroupName, Kind: r.Kind}
			if g.Name == "" {
				g.Name = key
			}
			byGroup[key] = g
			order = append(order, key)
		}
		g.Records++
		g.Amount = g.Amount.Add(r.Amount)
		switch {
		case r.IsExpense():
			g.Expense = g.Expense.Add(r.Amount.Neg())
			totalExpense = totalExpense.Add(r.Amount.Neg())
		case r.IsIncome():
			g.Income = g.Income.Add(r.Amount)
		}
	}

	out := make([]GroupTotal, 0, len(order))
	for _, key := range order {
		g := byGroup[key]
		if totalExpense.IsPositive() {
			g.Share = g.Expense.Mul(decimal.NewFromInt(100)).Div(totalExpense).InexactFloat64()
		}
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Amount.Abs(), out[j].Amount.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out
}
