// Package metrics computes financial health metrics over a filtered set of
// classified records: savings rate, emergency runway, spending mix and a
// composite health score with insights.
package metrics

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/hierarchy"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Metric names used in UndefinedMetricError.
const (
	MetricSavingsRate = "savings_rate"
	MetricRunway      = "emergency_runway"
)

var hundred = decimal.NewFromInt(100)

// Totals are the sign-based sums of a record set. Expense is positive.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// SumTotals adds positive amounts to income and negative amounts to expense.
func SumTotals(records []model.ClassifiedRecord) Totals {
	var t Totals
	for _, r := range records {
		switch {
		case r.Amount.IsPositive():
			t.Income = t.Income.Add(r.Amount)
		case r.Amount.IsNegative():
			t.Expense = t.Expense.Add(r.Amount.Neg())
		}
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// SavingsRate returns (income - expense) / income as a fraction. It fails
// with an UndefinedMetricError when there is no income.
func SavingsRate(records []model.ClassifiedRecord) (float64, error) {
	t := SumTotals(records)
	if !t.Income.IsPositive() {
		return 0, common.NewUndefinedMetric(MetricSavingsRate, "no income in the selected records")
	}
	return t.Net.Div(t.Income).InexactFloat64(), nil
}

// MonthCount returns the number of distinct calendar months in records.
func MonthCount(records []model.ClassifiedRecord) int {
	months := make(map[string]bool)
	for _, r := range records {
		months[r.PeriodKey()] = true
	}
	return len(months)
}

// EssentialMonthlyExpense is the essential-tier expense averaged over the
// distinct months present in records.
func EssentialMonthlyExpense(records []model.ClassifiedRecord) decimal.Decimal {
	months := MonthCount(records)
	if months == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, r := range records {
		if r.IsExpense() && r.Tier == model.TierEssential {
			total = total.Add(r.Amount.Neg())
		}
	}
	return total.Div(decimal.NewFromInt(int64(months)))
}

// EmergencyRunway returns how many months balance covers the average
// essential expense. It fails with an UndefinedMetricError when that
// average is zero.
func EmergencyRunway(balance decimal.Decimal, records []model.ClassifiedRecord) (float64, error) {
	monthly := EssentialMonthlyExpense(records)
	if !monthly.IsPositive() {
		return 0, common.NewUndefinedMetric(MetricRunway, "no essential expenses in the selected records")
	}
	return balance.Div(monthly).InexactFloat64(), nil
}

// MixEntry compares one tier's share of total expense against its target.
// Percentages are 0-100; Delta is Actual minus Ideal.
type MixEntry struct {
	Tier   model.Tier      `json:"tier"`
	Amount decimal.Decimal `json:"amount"`
	Actual float64         `json:"actual_pct"`
	Ideal  float64         `json:"ideal_pct"`
	Delta  float64         `json:"delta"`
}

// MixDeviation is the spending mix of a record set. Other holds expense
// outside every configured tier (unclassified or untiered groups); it has
// an ideal of 0 and is not part of TotalDeviation.
type MixDeviation struct {
	Entries        []MixEntry      `json:"entries"`
	Other          MixEntry        `json:"other"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	TotalDeviation float64         `json:"total_deviation"`
}

// Entry returns the entry of tier, if configured.
func (m MixDeviation) Entry(tier model.Tier) (MixEntry, bool) {
	for _, e := range m.Entries {
		if e.Tier == tier {
			return e, true
		}
	}
	return MixEntry{}, false
}

// CategoryMixDeviation compares each tier's share of total expense with the
// targets. With no expense every actual share is 0.
func CategoryMixDeviation(records []model.ClassifiedRecord, targets []hierarchy.TierTarget) MixDeviation {
	byTier := make(map[model.Tier]decimal.Decimal)
	total := decimal.Zero
	for _, r := range records {
		if !r.IsExpense() {
			continue
		}
		abs := r.Amount.Neg()
		total = total.Add(abs)
		byTier[r.Tier] = byTier[r.Tier].Add(abs)
	}

	share := func(amount decimal.Decimal) float64 {
		if total.IsZero() {
			return 0
		}
		return amount.Mul(hundred).Div(total).InexactFloat64()
	}

	mix := MixDeviation{TotalExpense: total}
	configured := make(map[model.Tier]bool, len(targets))
	for _, t := range targets {
		configured[t.Tier] = true
		amount := byTier[t.Tier]
		actual := share(amount)
		e := MixEntry{Tier: t.Tier, Amount: amount, Actual: actual, Ideal: t.Percent, Delta: actual - t.Percent}
		mix.Entries = append(mix.Entries, e)
		mix.TotalDeviation += abs(e.Delta)
	}

	other := decimal.Zero
	for tier, amount := range byTier {
		if !configured[tier] {
			other = other.Add(amount)
		}
	}
	mix.Other = MixEntry{Tier: model.TierNone, Amount: other, Actual: share(other)}
	mix.Other.Delta = mix.Other.Actual

	return mix
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// TopNExpenses returns the n largest expenses by magnitude. Ties sort by
// category name ascending, then by period start.
func TopNExpenses(records []model.ClassifiedRecord, n int) []model.ClassifiedRecord {
	if n <= 0 {
		return []model.ClassifiedRecord{}
	}

	expenses := make([]model.ClassifiedRecord, 0, len(records))
	for _, r := range records {
		if r.IsExpense() {
			expenses = append(expenses, r)
		}
	}

	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		if c := a.Amount.Abs().Cmp(b.Amount.Abs()); c != 0 {
			return c > 0
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.PeriodStart.Before(b.PeriodStart)
	})

	if len(expenses) > n {
		expenses = expenses[:n]
	}
	return expenses
}

// CategoryTotal is the expense of one primary category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// TopExpenseCategory returns the primary category with the largest total
// expense, ties by name.
func TopExpenseCategory(records []model.ClassifiedRecord) (CategoryTotal, bool) {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.IsExpense() {
			sums[r.PrimaryCategory] = sums[r.PrimaryCategory].Add(r.Amount.Neg())
		}
	}
	if len(sums) == 0 {
		return CategoryTotal{}, false
	}

	var best CategoryTotal
	first := true
	for cat, amount := range sums {
		c := amount.Cmp(best.Amount)
		if first || c > 0 || (c == 0 && cat < best.Category) {
			best = CategoryTotal{Category: cat, Amount: amount}
			first = false
		}
	}
	return best, true
}

// Value is a metric that may be undefined for the selected records.
type Value struct {
	Value   float64 `json:"value"`
	Defined bool    `json:"defined"`
	Reason  string  `json:"reason,omitempty"`
}

func valueOf(v float64, err error) Value {
	if err != nil {
		var undefined *common.UndefinedMetricError
		if errors.As(err, &undefined) {
			return Value{Reason: undefined.Reason}
		}
		return Value{Reason: err.Error()}
	}
	return Value{Value: v, Defined: true}
}

// Report is the full metric set of a filtered record set.
type Report struct {
	Totals           Totals          `json:"totals"`
	EssentialMonthly decimal.Decimal `json:"essential_monthly"`
	Balance          decimal.Decimal `json:"balance"`
	SavingsRate      Value           `json:"savings_rate"`
	Runway           Value           `json:"runway_months"`
	Mix              MixDeviation    `json:"mix"`
	Health           Health          `json:"health"`
	Insights         []Insight       `json:"insights"`
	Months           int             `json:"months"`
	Records          int             `json:"records"`
}

// Compute runs every metric over records. Undefined metrics are reported as
// such and count as zero in the health score.
func Compute(records []model.ClassifiedRecord, doc *hierarchy.Document, balance decimal.Decimal) Report {
	r := Report{
		Totals:           SumTotals(records),
		EssentialMonthly: EssentialMonthlyExpense(records),
		Balance:          balance,
		SavingsRate:      valueOf(SavingsRate(records)),
		Runway:           valueOf(EmergencyRunway(balance, records)),
		Mix:              CategoryMixDeviation(records, doc.IdealMix()),
		Months:           MonthCount(records),
		Records:          len(records),
	}
	r.Health = HealthScore(r.SavingsRate.Value, r.Runway.Value, r.Mix)
	r.Insights = GenerateInsights(r, records)
	return r
}
