package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Level is how close spend is to its budget.
type Level string

// Alert levels, least urgent first.
const (
	LevelSafe     Level = "safe"
	LevelWarning  Level = "warning"
	LevelDanger   Level = "danger"
	LevelExceeded Level = "exceeded"
)

// Levels lists alert levels, least urgent first.
func Levels() []Level {
	return []Level{LevelSafe, LevelWarning, LevelDanger, LevelExceeded}
}

const (
	warningUsage  = 70.0
	dangerUsage   = 90.0
	exceededUsage = 100.0
)

// Usage is spent as a percentage of budget. The sign of spent is ignored;
// a budget that is not positive yields 0.
func Usage(spent, budget decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	return spent.Abs().Mul(decimal.NewFromInt(100)).Div(budget).InexactFloat64()
}

// AlertLevel grades usage: safe under 70%, warning under 90%, danger under
// 100%, exceeded from 100%.
func AlertLevel(spent, budget decimal.Decimal) Level {
	usage := Usage(spent, budget)
	switch {
	case usage >= exceededUsage:
		return LevelExceeded
	case usage >= dangerUsage:
		return LevelDanger
	case usage >= warningUsage:
		return LevelWarning
	default:
		return LevelSafe
	}
}

// Progress is the spend of one category against its budget.
type Progress struct {
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Category        string          `json:"category"`
	Level           Level           `json:"level"`
	PercentageUsed  float64         `json:"percentage_used"`
}

// Track measures spent against budget. A negative remaining amount is the
// overspend.
func Track(category string, spent, budget decimal.Decimal) Progress {
	return Progress{
		Category:        category,
		AllocatedAmount: budget,
		SpentAmount:     spent.Abs(),
		RemainingAmount: budget.Sub(spent.Abs()),
		PercentageUsed:  Usage(spent, budget),
		Level:           AlertLevel(spent, budget),
	}
}

// Summary aggregates progress over a set of budgets.
type Summary struct {
	Counts         map[Level]int   `json:"counts"`
	TotalBudget    decimal.Decimal `json:"total_budget"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	Progress       []Progress      `json:"progress"`
	PercentageUsed float64         `json:"percentage_used"`
	Categories     int             `json:"categories"`
}

// Summarize tracks every budgeted category. Spend is looked up by
// normalized name and only budgeted categories count toward the totals.
// Progress is ordered by usage, highest first.
func Summarize(budgets, expenses map[string]decimal.Decimal) Summary {
	spentByKey := make(map[string]decimal.Decimal, len(expenses))
	for name, v := range expenses {
		key := common.Normalize(name)
		spentByKey[key] = spentByKey[key].Add(v.Abs())
	}

	s := Summary{Counts: make(map[Level]int, 4), Categories: len(budgets)}
	for _, l := range Levels() {
		s.Counts[l] = 0
	}
	for name, budget := range budgets {
		p := Track(name, spentByKey[common.Normalize(name)], budget)
		s.Progress = append(s.Progress, p)
		s.Counts[p.Level]++
		s.TotalBudget = s.TotalBudget.Add(budget)
		s.TotalSpent = s.TotalSpent.Add(p.SpentAmount)
	}
	s.PercentageUsed = Usage(s.TotalSpent, s.TotalBudget)

	sort.Slice(s.Progress, func(i, j int) bool {
		if s.Progress[i].PercentageUsed != s.Progress[j].PercentageUsed {
			return s.Progress[i].PercentageUsed > s.Progress[j].PercentageUsed
		}
		return s.Progress[i].Category < s.Progress[j].Category
	})
	return s
}

// SpentIn totals expense per category for one month ("2006-01").
func SpentIn(records []model.ClassifiedRecord, periodKey string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.IsExpense() && r.PeriodKey() == periodKey {
			out[r.Category] = out[r.Category].Add(r.Amount.Neg())
		}
	}
	return out
}

// Allocations turns suggestions into a budget map keyed by category.
func Allocations(suggestions []Suggestion) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(suggestions))
	for _, s := range suggestions {
		out[s.Category] = s.Suggested
	}
	return out
}
