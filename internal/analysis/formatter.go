package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/budget"
	"github.com/Veraticus/spice-ledger/internal/format"
	"github.com/Veraticus/spice-ledger/internal/metrics"
	"github.com/Veraticus/spice-ledger/internal/model"
)

const nameWidth = 28

// CLIFormatter renders ledger views for terminal display.
type CLIFormatter struct {
	styles   *Styles
	currency *format.Currency
}

// NewCLIFormatter creates a new CLI formatter with default styles.
func NewCLIFormatter(currency *format.Currency) *CLIFormatter {
	return &CLIFormatter{
		styles:   NewStyles(),
		currency: currency,
	}
}

// WithWidth returns a formatter whose boxes fit width columns.
func (f *CLIFormatter) WithWidth(width int) *CLIFormatter {
	return &CLIFormatter{styles: f.styles.WithWidth(width), currency: f.currency}
}

// FormatReport renders the health score, key figures, spending mix and
// insights of a metrics report.
func (f *CLIFormatter) FormatReport(r metrics.Report) string {
	if r.Records == 0 {
		return f.styles.Warning.Render("No records match the selection.")
	}

	sections := []string{
		f.formatReportHeader(r),
		f.formatHealth(r.Health),
		f.formatKeyFigures(r),
		f.formatMix(r.Mix),
	}
	if len(r.Insights) > 0 {
		sections = append(sections, f.FormatInsights(r.Insights))
	}
	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatReportHeader(r metrics.Report) string {
	title := f.styles.Title.Render("📊 Financial Health Report")
	scope := f.styles.Subtitle.Render(fmt.Sprintf("%d records over %d months", r.Records, r.Months))
	return title + "\n" + scope
}

func (f *CLIFormatter) formatHealth(h metrics.Health) string {
	style := f.styles.ForBand(h.Band)

	var emoji string
	switch h.Band {
	case metrics.BandExcellent:
		emoji = "🎯"
	case metrics.BandGood:
		emoji = "✅"
	case metrics.BandFair:
		emoji = "⚠️"
	default:
		emoji = "❌"
	}

	score := style.Render(fmt.Sprintf("%s Health Score: %.0f/100 (%s)", emoji, h.Score, h.Band))
	bar := style.Render(f.styles.RenderProgressBar(h.Score/100, 30))
	breakdown := f.styles.Subtle.Render(fmt.Sprintf("Savings %.0f/%.0f · Runway %.0f/%.0f · Mix %.0f/%.0f",
		h.Savings, metrics.SavingsWeight,
		h.Runway, metrics.RunwayWeight,
		h.Mix, metrics.MixWeight))

	return score + "\n" + bar + "\n" + breakdown
}

func (f *CLIFormatter) formatKeyFigures(r metrics.Report) string {
	savings := "n/a"
	if r.SavingsRate.Defined {
		savings = format.Ratio(r.SavingsRate.Value, 1)
	} else if r.SavingsRate.Reason != "" {
		savings = "n/a (" + r.SavingsRate.Reason + ")"
	}

	runway := "n/a"
	if r.Runway.Defined {
		runway = fmt.Sprintf("%.1f months", r.Runway.Value)
	} else if r.Runway.Reason != "" {
		runway = "n/a (" + r.Runway.Reason + ")"
	}

	rows := [][]string{
		{"Income", f.styles.Income.Render(f.currency.Format(r.Totals.Income, false))},
		{"Expenses", f.styles.Expense.Render(f.currency.Format(r.Totals.Expense, false))},
		{"Net", f.amount(r.Totals.Net, true)},
		{"Savings rate", savings},
		{"Balance", f.currency.Format(r.Balance, false)},
		{"Essential per month", f.currency.Format(r.EssentialMonthly, false)},
		{"Emergency runway", runway},
	}
	return f.styles.Subtitle.Render("Key Figures:") + "\n" + f.table([]column{{title: "Metric"}, {title: "Value", right: true}}, rows)
}

func (f *CLIFormatter) formatMix(m metrics.MixDeviation) string {
	cols := []column{
		{title: "Tier"},
		{title: "Amount", right: true},
		{title: "Actual", right: true},
		{title: "Ideal", right: true},
		{title: "Delta", right: true},
	}

	rows := make([][]string, 0, len(m.Entries)+1)
	for _, e := range m.Entries {
		delta := fmt.Sprintf("%+.1f pp", e.Delta)
		if e.Delta > 0 {
			delta = f.styles.Warning.Render(delta)
		}
		rows = append(rows, []string{
			string(e.Tier),
			f.currency.Format(e.Amount, false),
			format.Percent(e.Actual, 1),
			format.Percent(e.Ideal, 0),
			delta,
		})
	}
	if m.Other.Amount.IsPositive() {
		rows = append(rows, []string{
			f.styles.Subtle.Render("other"),
			f.currency.Format(m.Other.Amount, false),
			format.Percent(m.Other.Actual, 1),
			"-",
			"-",
		})
	}

	title := f.styles.Subtitle.Render("Spending Mix:")
	footer := f.styles.Subtle.Render(fmt.Sprintf("Total deviation: %.1f pp", m.TotalDeviation))
	return title + "\n" + f.table(cols, rows) + "\n" + footer
}

// FormatInsights renders insights with a severity icon each.
func (f *CLIFormatter) FormatInsights(insights []metrics.Insight) string {
	lines := make([]string, 0, len(insights))
	for _, in := range insights {
		icon := severityIcon(in.Severity)
		text := f.styles.ForSeverity(in.Severity).Render(InsightMessage(in, f.currency))
		lines = append(lines, icon+" "+text)
	}
	return f.styles.RenderBox(strings.Join(lines, "\n"), "💡 Insights", f.styles.InsightBox)
}

func severityIcon(s metrics.Severity) string {
	switch s {
	case metrics.SeverityCritical:
		return "🚨"
	case metrics.SeverityWarning:
		return "⚠️"
	default:
		return "💡"
	}
}

// InsightMessage renders the text of an insight template.
func InsightMessage(in metrics.Insight, cur *format.Currency) string {
	num := func(key string) float64 {
		v, _ := in.Values[key].(float64)
		return v
	}
	money := func(key string) string {
		v, _ := in.Values[key].(decimal.Decimal)
		return cur.Format(v, false)
	}
	str := func(key string) string {
		v, _ := in.Values[key].(string)
		return v
	}

	switch in.Template {
	case metrics.InsightSavingsNegative:
		return fmt.Sprintf("You spent more than you earned: savings rate is %s.", format.Ratio(num("rate"), 1))
	case metrics.InsightSavingsLow:
		return fmt.Sprintf("Savings rate is %s, well under the %s target.", format.Ratio(num("rate"), 1), format.Ratio(num("target"), 0))
	case metrics.InsightSavingsBelowTarget:
		return fmt.Sprintf("Savings rate is %s; the target is %s.", format.Ratio(num("rate"), 1), format.Ratio(num("target"), 0))
	case metrics.InsightSavingsUndefined:
		return "There is spending but no income in the selection, so the savings rate is undefined."
	case metrics.InsightRunwayCritical:
		return fmt.Sprintf("Emergency runway is %.1f months, less than one month of essential spending.", num("months"))
	case metrics.InsightRunwayLow:
		return fmt.Sprintf("Emergency runway is %.1f months; build it toward %.0f.", num("months"), num("target"))
	case metrics.InsightRunwayBelowTarget:
		return fmt.Sprintf("Emergency runway is %.1f months, short of the %.0f month target.", num("months"), num("target"))
	case metrics.InsightEssentialHigh:
		return fmt.Sprintf("Essential spending is %s of expenses (ideal %s).", format.Percent(num("actual"), 1), format.Percent(num("ideal"), 0))
	case metrics.InsightDiscretionaryHigh:
		return fmt.Sprintf("Discretionary spending is %s of expenses (ideal %s).", format.Percent(num("actual"), 1), format.Percent(num("ideal"), 0))
	case metrics.InsightUnclassifiedSpend:
		return fmt.Sprintf("%s of spending (%s) matched no category rule.", money("amount"), format.Percent(num("share"), 1))
	case metrics.InsightTopCategory:
		return fmt.Sprintf("Largest expense category: %s at %s.", str("category"), money("amount"))
	default:
		return in.Template
	}
}

// FormatPivot renders a pivot with row totals and a total row.
func (f *CLIFormatter) FormatPivot(p *Pivot) string {
	if p == nil || len(p.Rows) == 0 {
		return f.styles.Warning.Render("No records match the selection.")
	}

	cols := make([]column, 0, len(p.Columns)+2)
	cols = append(cols, column{title: string(p.RowDim)})
	for _, c := range p.Columns {
		cols = append(cols, column{title: c.Label, right: true})
	}
	showTotals := len(p.Columns) > 1
	if showTotals {
		cols = append(cols, column{title: "Total", right: true})
	}

	rows := make([][]string, 0, len(p.Rows)+1)
	for i, r := range p.Rows {
		row := []string{truncate(r.Label, nameWidth)}
		for _, c := range p.Cells[i] {
			row = append(row, f.cell(c, p.Agg))
		}
		if showTotals {
			row = append(row, f.styles.Normal.Bold(true).Render(f.cell(p.RowTotals[i], p.Agg)))
		}
		rows = append(rows, row)
	}

	total := []string{f.styles.Normal.Bold(true).Render("Total")}
	for _, c := range p.ColTotals {
		total = append(total, f.cell(c, p.Agg))
	}
	if showTotals {
		total = append(total, f.styles.Score.Render(f.cell(p.Grand, p.Agg)))
	}
	rows = append(rows, total)

	title := fmt.Sprintf("📊 %s of amount by %s", p.Agg, p.RowDim)
	if p.ColDim != DimNone {
		title += " and " + string(p.ColDim)
	}
	return f.styles.Title.Render(title) + "\n" + f.table(cols, rows)
}

func (f *CLIFormatter) cell(c Cell, agg Aggregation) string {
	if c.Count == 0 {
		return f.styles.Subtle.Render("-")
	}
	if agg == AggCount {
		return c.Value.String()
	}
	return f.amount(c.Value, false)
}

// FormatTop renders the largest expenses.
func (f *CLIFormatter) FormatTop(records []model.ClassifiedRecord) string {
	if len(records) == 0 {
		return f.styles.Warning.Render("No expenses match the selection.")
	}

	cols := []column{
		{title: "#", right: true},
		{title: "Category"},
		{title: "Group"},
		{title: "Period"},
		{title: "Amount", right: true},
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			truncate(r.Category, nameWidth),
			f.styles.Subtle.Render(r.GroupKey()),
			format.MonthYear(r.Year, r.Month),
			f.amount(r.Amount, false),
		})
	}
	return f.styles.Title.Render(fmt.Sprintf("💸 Top %d Expenses", len(records))) + "\n" + f.table(cols, rows)
}

// FormatSummary renders a dataset summary.
func (f *CLIFormatter) FormatSummary(s Summary) string {
	if s.Records == 0 {
		return f.styles.Warning.Render("The dataset has no records.")
	}
	rows := [][]string{
		{"Records", strconv.Itoa(s.Records)},
		{"Categories", strconv.Itoa(s.Categories)},
		{"Periods", strconv.Itoa(s.Periods)},
		{"Groups", strconv.Itoa(s.Groups)},
		{"Range", format.Period(s.From, s.To)},
		{"Income", f.styles.Income.Render(f.currency.Format(s.Totals.Income, false))},
		{"Expenses", f.styles.Expense.Render(f.currency.Format(s.Totals.Expense, false))},
		{"Net", f.amount(s.Totals.Net, true)},
	}
	return f.styles.Title.Render("📒 Dataset Summary") + "\n" + f.table([]column{{title: "Field"}, {title: "Value", right: true}}, rows)
}

// FormatGroups renders per-group totals.
func (f *CLIFormatter) FormatGroups(groups []GroupTotal) string {
	cols := []column{
		{title: "Group"},
		{title: "Kind"},
		{title: "Records", right: true},
		{title: "Expense", right: true},
		{title: "Income", right: true},
		{title: "Share", right: true},
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			truncate(g.Name, nameWidth),
			f.styles.Subtle.Render(string(g.Kind)),
			strconv.Itoa(g.Records),
			f.currency.Format(g.Expense, false),
			f.currency.Format(g.Income, false),
			format.Percent(g.Share, 1),
		})
	}
	return f.styles.Subtitle.Render("Groups:") + "\n" + f.table(cols, rows)
}

// FormatFlow renders monthly income, expense and net.
func (f *CLIFormatter) FormatFlow(flow []MonthFlow) string {
	cols := []column{
		{title: "Month"},
		{title: "Income", right: true},
		{title: "Expense", right: true},
		{title: "Net", right: true},
	}
	rows := make([][]string, 0, len(flow))
	for _, m := range flow {
		rows = append(rows, []string{
			format.MonthYear(m.Year, m.Month),
			f.currency.Format(m.Income, false),
			f.currency.Format(m.Expense, false),
			f.amount(m.Net, true),
		})
	}
	return f.styles.Subtitle.Render("Monthly Cash Flow:") + "\n" + f.table(cols, rows)
}

// FormatDuplicates renders category names that collapse to one key.
func (f *CLIFormatter) FormatDuplicates(warnings []model.DuplicateWarning) string {
	if len(warnings) == 0 {
		return f.styles.Success.Render("✅ No duplicate category names")
	}
	lines := []string{f.styles.Warning.Render(fmt.Sprintf("⚠️ %d duplicate category names:", len(warnings)))}
	for _, w := range warnings {
		lines = append(lines, fmt.Sprintf("  • %s ← %s",
			f.styles.Info.Render(w.NormalizedKey),
			strings.Join(quoteAll(w.RawNames), ", ")))
	}
	return strings.Join(lines, "\n")
}

// FormatUnclassified renders category names that matched no rule.
func (f *CLIFormatter) FormatUnclassified(names []string) string {
	if len(names) == 0 {
		return f.styles.Success.Render("✅ Every category is classified")
	}
	lines := []string{f.styles.Warning.Render(fmt.Sprintf("⚠️ %d unclassified categories:", len(names)))}
	for _, n := range names {
		lines = append(lines, "  • "+n)
	}
	return strings.Join(lines, "\n")
}

// FormatBudgets renders budget suggestions and, when progress is given,
// spend against them for one month.
func (f *CLIFormatter) FormatBudgets(suggestions []budget.Suggestion, progress *budget.Summary, period string) string {
	if len(suggestions) == 0 {
		return f.styles.Warning.Render("No expense history to budget from.")
	}

	cols := []column{
		{title: "Category"},
		{title: "Suggested", right: true},
		{title: "Range", right: true},
		{title: "Trend", right: true},
		{title: "Volatility"},
		{title: "Confidence", right: true},
	}
	rows := make([][]string, 0, len(suggestions))
	total := decimal.Zero
	for _, s := range suggestions {
		total = total.Add(s.Suggested)
		rows = append(rows, []string{
			truncate(s.Category, nameWidth),
			f.styles.Score.Render(f.currency.Format(s.Suggested, false)),
			f.currency.Format(s.Minimum, false) + " - " + f.currency.Format(s.Maximum, false),
			f.currency.Format(s.Trend, false),
			string(s.Volatility),
			strconv.Itoa(s.Confidence) + "%",
		})
	}

	sections := []string{
		f.styles.Title.Render(fmt.Sprintf("🎯 Suggested Monthly Budgets (%s)", suggestions[0].Method)) + "\n" +
			f.table(cols, rows) + "\n" +
			f.styles.Subtle.Render("Total: "+f.currency.Format(total, false)),
	}
	if progress != nil {
		sections = append(sections, f.formatProgress(*progress, period))
	}
	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatProgress(s budget.Summary, period string) string {
	cols := []column{
		{title: "Category"},
		{title: "Spent", right: true},
		{title: "Budget", right: true},
		{title: "Used"},
		{title: "Status"},
	}
	rows := make([][]string, 0, len(s.Progress))
	for _, p := range s.Progress {
		style := f.styles.ForLevel(p.Level)
		rows = append(rows, []string{
			truncate(p.Category, nameWidth),
			f.currency.Format(p.SpentAmount, false),
			f.currency.Format(p.AllocatedAmount, false),
			style.Render(f.styles.RenderProgressBar(p.PercentageUsed/100, 10)) + " " + format.Percent(p.PercentageUsed, 0),
			style.Render(string(p.Level)),
		})
	}

	counts := make([]string, 0, len(budget.Levels()))
	for _, l := range budget.Levels() {
		counts = append(counts, f.styles.ForLevel(l).Render(fmt.Sprintf("%s %d", l, s.Counts[l])))
	}

	title := f.styles.Subtitle.Render("Spend in " + period + ":")
	footer := fmt.Sprintf("%s of %s used (%s)  %s",
		f.currency.Format(s.TotalSpent, false),
		f.currency.Format(s.TotalBudget, false),
		format.Percent(s.PercentageUsed, 1),
		strings.Join(counts, " · "))
	return title + "\n" + f.table(cols, rows) + "\n" + f.styles.Subtle.Render(footer)
}

// FormatPattern renders the spending history of one category.
func (f *CLIFormatter) FormatPattern(p budget.Pattern) string {
	rows := [][]string{
		{"Total", f.currency.Format(p.Total, false)},
		{"Monthly average", f.currency.Format(p.MonthlyAverage, false)},
		{"Median", f.currency.Format(p.Median, false)},
		{"Std deviation", f.currency.Format(p.StdDev, false)},
		{"Min / max", f.currency.Format(p.Min, false) + " / " + f.currency.Format(p.Max, false)},
		{"Months with spend", fmt.Sprintf("%d of %d", p.MonthsWithSpend, p.MonthsWithSpend+p.MonthsNoSpend)},
		{"Frequency", format.Percent(p.Frequency, 1)},
		{"Trend", string(p.Trend)},
	}
	return f.styles.RenderBox(f.table([]column{{title: "Statistic"}, {title: "Value", right: true}}, rows), p.Category, f.styles.Box)
}

func (f *CLIFormatter) amount(d decimal.Decimal, signed bool) string {
	return f.styles.ForAmount(d).Render(f.currency.Format(d, signed))
}

type column struct {
	title string
	right bool
}

// table lays out rows under a header. Widths are measured with
// lipgloss.Width so styled cells line up.
func (f *CLIFormatter) table(cols []column, rows [][]string) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.title)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(cols); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cols))
		for i, c := range cols {
			v := ""
			if i < len(cells) {
				v = cells[i]
			}
			parts[i] = pad(v, widths[i], c.right)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * (len(widths) - 1)

	out := []string{
		f.styles.Header.Render(line(titles)),
		f.styles.Subtle.Render(strings.Repeat("─", total)),
	}
	for _, row := range rows {
		out = append(out, line(row))
	}
	return strings.Join(out, "\n")
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strconv.Quote(n)
	}
	return out
}
