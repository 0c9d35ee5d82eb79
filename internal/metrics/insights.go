package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// Severity ranks an insight.
type Severity string

// Insight severities, most urgent first.
const (
	SeverityCritical   Severity = "critical"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Insight templates. Values are keyed by the placeholders each template
// documents; rendering is left to the caller.
const (
	// {rate}
	InsightSavingsNegative = "savings.negative"
	// {rate, target}
	InsightSavingsLow = "savings.low"
	// {rate, target}
	InsightSavingsBelowTarget = "savings.below_target"
	// {}
	InsightSavingsUndefined = "savings.undefined"
	// {months}
	InsightRunwayCritical = "runway.critical"
	// {months, target}
	InsightRunwayLow = "runway.low"
	// {months, target}
	InsightRunwayBelowTarget = "runway.below_target"
	// {actual, ideal}
	InsightEssentialHigh = "mix.essential_high"
	// {actual, ideal}
	InsightDiscretionaryHigh = "mix.discretionary_high"
	// {amount, share}
	InsightUnclassifiedSpend = "data.unclassified_spend"
	// {category, amount}
	InsightTopCategory = "expense.top_category"
)

// Thresholds used by GenerateInsights.
const (
	savingsTarget          = 0.20
	savingsLow             = 0.10
	runwayTarget           = 6.0
	runwayLow              = 3.0
	runwayCritical         = 1.0
	essentialShareLimit    = 60.0
	discretionaryShareHigh = 30.0
)

// Insight is one rule-based observation. It carries data, not text.
type Insight struct {
	Values   map[string]any `json:"values"`
	Severity Severity       `json:"severity"`
	Template string         `json:"template"`
}

// GenerateInsights evaluates the insight rules against a report. Insights
// are ordered by severity, then by rule order.
func GenerateInsights(r Report, records []model.ClassifiedRecord) []Insight {
	var out []Insight
	add := func(sev Severity, tmpl string, values map[string]any) {
		if values == nil {
			values = map[string]any{}
		}
		out = append(out, Insight{Severity: sev, Template: tmpl, Values: values})
	}

	if r.SavingsRate.Defined {
		rate := r.SavingsRate.Value
		switch {
		case rate < 0:
			add(SeverityCritical, InsightSavingsNegative, map[string]any{"rate": rate})
		case rate < savingsLow:
			add(SeverityWarning, InsightSavingsLow, map[string]any{"rate": rate, "target": savingsTarget})
		case rate < savingsTarget:
			add(SeveritySuggestion, InsightSavingsBelowTarget, map[string]any{"rate": rate, "target": savingsTarget})
		}
	} else if r.Totals.Expense.IsPositive() {
		add(SeverityWarning, InsightSavingsUndefined, nil)
	}

	if r.Runway.Defined {
		months := r.Runway.Value
		switch {
		case months < runwayCritical:
			add(SeverityCritical, InsightRunwayCritical, map[string]any{"months": months})
		case months < runwayLow:
			add(SeverityWarning, InsightRunwayLow, map[string]any{"months": months, "target": runwayTarget})
		case months < runwayTarget:
			add(SeveritySuggestion, InsightRunwayBelowTarget, map[string]any{"months": months, "target": runwayTarget})
		}
	}

	if e, ok := r.Mix.Entry(model.TierEssential); ok && e.Actual > essentialShareLimit {
		add(SeverityWarning, InsightEssentialHigh, map[string]any{"actual": e.Actual, "ideal": e.Ideal})
	}
	if e, ok := r.Mix.Entry(model.TierDiscretionary); ok && e.Actual > discretionaryShareHigh {
		add(SeveritySuggestion, InsightDiscretionaryHigh, map[string]any{"actual": e.Actual, "ideal": e.Ideal})
	}

	if unclassified := unclassifiedExpense(records); unclassified.IsPositive() && r.Totals.Expense.IsPositive() {
		share := unclassified.Mul(hundred).Div(r.Totals.Expense).InexactFloat64()
		add(SeverityWarning, InsightUnclassifiedSpend, map[string]any{"amount": unclassified, "share": share})
	}

	if top, ok := TopExpenseCategory(records); ok {
		add(SeveritySuggestion, InsightTopCategory, map[string]any{"category": top.Category, "amount": top.Amount})
	}

	return sortBySeverity(out)
}

func sortBySeverity(in []Insight) []Insight {
	out := make([]Insight, 0, len(in))
	for _, sev := range []Severity{SeverityCritical, SeverityWarning, SeveritySuggestion} {
		for _, i := range in {
			if i.Severity == sev {
				out = append(out, i)
			}
		}
	}
	return out
}

func unclassifiedExpense(records []model.ClassifiedRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.IsExpense() && r.GroupID == "" {
			total = total.Add(r.Amount.Neg())
		}
	}
	return total
}
