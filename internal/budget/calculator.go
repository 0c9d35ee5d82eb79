// Package budget suggests monthly budgets from spending history and tracks
// spend against them.
package budget

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Method selects how a suggestion is derived.
type Method string

// Suggestion methods.
const (
	MethodAuto         Method = "auto"
	MethodConservative Method = "conservative"
	MethodModerate     Method = "moderate"
	MethodAggressive   Method = "aggressive"
)

// ErrUnknownMethod is returned for a method name that is not supported.
var ErrUnknownMethod = errors.New("unknown budget method")

// ParseMethod validates a method name. An empty name is auto.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case "":
		return MethodAuto, nil
	case MethodAuto, MethodConservative, MethodModerate, MethodAggressive:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

// Volatility classifies how much a category's monthly spend varies.
type Volatility string

// Volatility levels.
const (
	VolatilityLow     Volatility = "low"
	VolatilityMedium  Volatility = "medium"
	VolatilityHigh    Volatility = "high"
	VolatilityUnknown Volatility = "unknown"
)

// Trend is the direction of recent spend compared to early spend.
type Trend string

// Trends.
const (
	TrendGrowing      Trend = "growing"
	TrendDeclining    Trend = "declining"
	TrendStable       Trend = "stable"
	TrendInsufficient Trend = "insufficient data"
)

const (
	volatilityWindow = 6
	lowCV            = 15.0
	mediumCV         = 40.0
	trendBand        = 0.15
)

// Calculator holds one monthly expense series per category. Series cover
// every month present in the input, oldest first, with 0 for months
// without spend.
type Calculator struct {
	series  map[string][]float64
	names   map[string]string
	periods []string
	order   []string
}

// NewCalculator builds expense series from classified records. Income is
// ignored; expense amounts are stored as positive magnitudes.
func NewCalculator(records []model.ClassifiedRecord) *Calculator {
	c := &Calculator{
		series: make(map[string][]float64),
		names:  make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.PeriodKey()] {
			seen[r.PeriodKey()] = true
			c.periods = append(c.periods, r.PeriodKey())
		}
	}
	sort.Strings(c.periods)
	index := make(map[string]int, len(c.periods))
	for i, p := range c.periods {
		index[p] = i
	}

	for _, r := range records {
		if !r.IsExpense() {
			continue
		}
		key := common.Normalize(r.Category)
		s, ok := c.series[key]
		if !ok {
			s = make([]float64, len(c.periods))
			c.names[key] = r.Category
			c.order = append(c.order, key)
		}
		s[index[r.PeriodKey()]] += r.Amount.Neg().InexactFloat64()
		c.series[key] = s
	}
	return c
}

// Periods returns the months covered by the series.
func (c *Calculator) Periods() []string {
	return append([]string(nil), c.periods...)
}

// Categories returns the categories with at least one expense, in input order.
func (c *Calculator) Categories() []string {
	out := make([]string, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.names[k])
	}
	return out
}

// Series returns the monthly series of a category.
func (c *Calculator) Series(category string) ([]float64, bool) {
	s, ok := c.series[common.Normalize(category)]
	return s, ok
}

func (c *Calculator) lookup(category string) ([]float64, error) {
	s, ok := c.Series(category)
	if !ok {
		return nil, fmt.Errorf("category %q: %w", category, common.ErrNotFound)
	}
	return s, nil
}

// MovingAverage is the mean of the non-zero values among the last months.
func (c *Calculator) MovingAverage(category string, months int) float64 {
	s, ok := c.Series(category)
	if !ok {
		return 0
	}
	return mean(nonZero(tail(s, months)))
}

// Percentile returns the p-th percentile (0-100) of the non-zero months,
// interpolating linearly between ranks.
func (c *Calculator) Percentile(category string, p float64) float64 {
	s, ok := c.Series(category)
	if !ok {
		return 0
	}
	return percentile(nonZero(s), p)
}

// TrendForecast fits a least-squares line through the non-zero months and
// projects it ahead months past the last period. With fewer than three
// points it falls back to the three-month moving average. It never
// returns a negative amount.
func (c *Calculator) TrendForecast(category string, ahead int) float64 {
	s, ok := c.Series(category)
	if !ok {
		return 0
	}

	var xs, ys []float64
	for i, v := range s {
		if v > 0 {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	if len(xs) < 3 {
		return c.MovingAverage(category, 3)
	}

	slope, intercept := linearFit(xs, ys)
	next := float64(len(s) + ahead - 1)
	return math.Max(slope*next+intercept, 0)
}

// Volatility classifies the coefficient of variation of the non-zero
// values in the last six months.
func (c *Calculator) Volatility(category string) Volatility {
	s, ok := c.Series(category)
	if !ok {
		return VolatilityUnknown
	}
	values := nonZero(tail(s, volatilityWindow))
	if len(values) < 2 {
		return VolatilityUnknown
	}

	m := mean(values)
	cv := 0.0
	if m > 0 {
		cv = stddev(values) / m * 100
	}
	switch {
	case cv < lowCV:
		return VolatilityLow
	case cv < mediumCV:
		return VolatilityMedium
	default:
		return VolatilityHigh
	}
}

// Suggestion is a proposed monthly budget for one category.
type Suggestion struct {
	Suggested    decimal.Decimal `json:"suggested"`
	Minimum      decimal.Decimal `json:"minimum"`
	Maximum      decimal.Decimal `json:"maximum"`
	Average3     decimal.Decimal `json:"average_3m"`
	Average6     decimal.Decimal `json:"average_6m"`
	Percentile75 decimal.Decimal `json:"percentile_75"`
	Percentile90 decimal.Decimal `json:"percentile_90"`
	Trend        decimal.Decimal `json:"trend"`
	Category     string          `json:"category"`
	Method       Method          `json:"method"`
	Volatility   Volatility      `json:"volatility"`
	Confidence   int             `json:"confidence"`
}

// Suggest proposes a budget for category. Auto picks by volatility: the
// three-month average for stable spend, the 75th percentile for moderate
// and the 90th for volatile spend.
func (c *Calculator) Suggest(category string, method Method) (Suggestion, error) {
	if _, err := c.lookup(category); err != nil {
		return Suggestion{}, err
	}
	if method == "" {
		method = MethodAuto
	}

	ma3 := c.MovingAverage(category, 3)
	ma6 := c.MovingAverage(category, 6)
	p75 := c.Percentile(category, 75)
	p90 := c.Percentile(category, 90)
	trend := c.TrendForecast(category, 1)
	vol := c.Volatility(category)

	var suggested float64
	var confidence int
	switch method {
	case MethodAuto:
		switch vol {
		case VolatilityLow:
			suggested, confidence = ma3, 85
		case VolatilityMedium:
			suggested, confidence = p75, 70
		default:
			suggested, confidence = p90, 60
		}
	case MethodConservative:
		suggested, confidence = p90, 90
	case MethodModerate:
		suggested, confidence = ma3*0.4+ma6*0.3+p75*0.3, 75
	case MethodAggressive:
		suggested, confidence = ma3, 50
	default:
		return Suggestion{}, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	return Suggestion{
		Category:     c.names[common.Normalize(category)],
		Method:       method,
		Volatility:   vol,
		Confidence:   confidence,
		Suggested:    money(suggested),
		Minimum:      money(ma3 * 0.8),
		Maximum:      money(p90 * 1.1),
		Average3:     money(ma3),
		Average6:     money(ma6),
		Percentile75: money(p75),
		Percentile90: money(p90),
		Trend:        money(trend),
	}, nil
}

// SuggestAll suggests a budget for every category, largest first and by
// name on ties.
func (c *Calculator) SuggestAll(method Method) ([]Suggestion, error) {
	out := make([]Suggestion, 0, len(c.order))
	for _, key := range c.order {
		s, err := c.Suggest(c.names[key], method)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Suggested.Equal(out[j].Suggested) {
			return out[i].Suggested.GreaterThan(out[j].Suggested)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// Pattern describes the spending history of one category.
type Pattern struct {
	Total           decimal.Decimal `json:"total"`
	MonthlyAverage  decimal.Decimal `json:"monthly_average"`
	Median          decimal.Decimal `json:"median"`
	StdDev          decimal.Decimal `json:"std_dev"`
	Min             decimal.Decimal `json:"min"`
	Max             decimal.Decimal `json:"max"`
	Category        string          `json:"category"`
	Trend           Trend           `json:"trend"`
	MonthsWithSpend int             `json:"months_with_spend"`
	MonthsNoSpend   int             `json:"months_without_spend"`
	// Frequency is the percentage of months with spend.
	Frequency float64 `json:"frequency"`
}

// ErrNoSpending is returned when a category has no non-zero month.
var ErrNoSpending = errors.New("no spending recorded")

// SpendingPattern summarizes a category's history. Averages and spread are
// taken over months with spend; the trend compares the last three months
// with the first three.
func (c *Calculator) SpendingPattern(category string) (Pattern, error) {
	s, err := c.lookup(category)
	if err != nil {
		return Pattern{}, err
	}
	values := nonZero(s)
	if len(values) == 0 {
		return Pattern{}, fmt.Errorf("category %q: %w", category, ErrNoSpending)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p := Pattern{
		Category:        c.names[common.Normalize(category)],
		Total:           money(sum(s)),
		MonthlyAverage:  money(mean(values)),
		Median:          money(percentile(values, 50)),
		StdDev:          money(stddev(values)),
		Min:             money(sorted[0]),
		Max:             money(sorted[len(sorted)-1]),
		MonthsWithSpend: len(values),
		MonthsNoSpend:   len(s) - len(values),
		Frequency:       math.Round(float64(len(values))/float64(len(s))*1000) / 10,
		Trend:           TrendInsufficient,
	}

	if len(values) >= 3 {
		recent := mean(nonZero(tail(s, 3)))
		early := mean(nonZero(head(s, 3)))
		switch {
		case recent > early*(1+trendBand):
			p.Trend = TrendGrowing
		case recent < early*(1-trendBand):
			p.Trend = TrendDeclining
		default:
			p.Trend = TrendStable
		}
	}
	return p, nil
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func tail(s []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

func head(s []float64, n int) []float64 {
	if n >= len(s) {
		return s
	}
	return s[:n]
}

func nonZero(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v != 0 {
			out = append(out, math.Abs(v))
		}
	}
	return out
}

func sum(s []float64) float64 {
	return floats.Sum(s)
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return stat.Mean(s, nil)
}

// stddev is the population standard deviation.
func stddev(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(s, nil)
	return std
}

// percentile interpolates between closest ranks at (n-1)*p. stat.Quantile's
// LinInterp places sample k at k/n, so p is shifted onto that scale first.
func percentile(s []float64, p float64) float64 {
	if len(s) == 0 {
		return 0
	}
	p = math.Min(math.Max(p, 0), 100) / 100
	sorted := append([]float64(nil), s...)
	sort.Float64s(sorted)

	n := float64(len(sorted))
	q := math.Min(((n-1)*p+1)/n, 1)
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// linearFit is an ordinary least squares fit of ys against xs.
func linearFit(xs, ys []float64) (slope, intercept float64) {
	if len(xs) < 2 || stat.Variance(xs, nil) == 0 {
		return 0, mean(ys)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta, alpha
}
