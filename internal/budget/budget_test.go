package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

func history() []model.ClassifiedRecord {
	var records []model.ClassifiedRecord
	for m := 1; m <= 4; m++ {
		records = append(records,
			testutil.Expense("Café", "discrecional", model.TierDiscretionary, 2024, m, -100),
			testutil.Income("R-Sueldo", "ingreso_regular", 2024, m, 5000),
		)
	}
	salidas := []int64{-100, -300, 0, -500}
	for i, amt := range salidas {
		records = append(records, testutil.Expense("D-Salidas", "discrecional", model.TierDiscretionary, 2024, i+1, amt))
	}
	records = append(records, testutil.Expense("Taxi", "basico", model.TierBasic, 2024, 2, -80))
	return records
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculator_Series(t *testing.T) {
	c := NewCalculator(history())

	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04"}, c.Periods())
	assert.Equal(t, []string{"Café", "D-Salidas", "Taxi"}, c.Categories())

	s, ok := c.Series("d-salidas")
	require.True(t, ok)
	assert.Equal(t, []float64{100, 300, 0, 500}, s)

	_, ok = c.Series("R-Sueldo")
	assert.False(t, ok, "income is not budgeted")
}

func TestCalculator_Statistics(t *testing.T) {
	c := NewCalculator(history())

	assert.InDelta(t, 100, c.MovingAverage("Café", 3), 1e-9)
	assert.InDelta(t, 400, c.MovingAverage("D-Salidas", 3), 1e-9, "zero months are skipped")
	assert.InDelta(t, 300, c.MovingAverage("D-Salidas", 6), 1e-9)
	assert.Zero(t, c.MovingAverage("Nope", 3))

	assert.InDelta(t, 400, c.Percentile("D-Salidas", 75), 1e-9)
	assert.InDelta(t, 460, c.Percentile("D-Salidas", 90), 1e-9)
	assert.InDelta(t, 100, c.Percentile("Café", 90), 1e-9)

	assert.InDelta(t, 642.857, c.TrendForecast("D-Salidas", 1), 1e-3)
	assert.InDelta(t, 80, c.TrendForecast("Taxi", 1), 1e-9, "falls back to moving average")

	assert.Equal(t, VolatilityLow, c.Volatility("Café"))
	assert.Equal(t, VolatilityHigh, c.Volatility("D-Salidas"))
	assert.Equal(t, VolatilityUnknown, c.Volatility("Taxi"))
	assert.Equal(t, VolatilityUnknown, c.Volatility("Nope"))
}

func TestCalculator_TrendNeverNegative(t *testing.T) {
	var records []model.ClassifiedRecord
	for i, amt := range []int64{-900, -600, -300, 0, 0, 0} {
		records = append(records, testutil.Expense("Gym", "discrecional", model.TierDiscretionary, 2024, i+1, amt))
	}
	assert.Zero(t, NewCalculator(records).TrendForecast("Gym", 1))
}

func TestCalculator_Suggest(t *testing.T) {
	c := NewCalculator(history())

	tests := []struct {
		name       string
		category   string
		method     Method
		suggested  string
		confidence int
	}{
		{name: "auto stable", category: "Café", method: MethodAuto, suggested: "100", confidence: 85},
		{name: "auto volatile", category: "D-Salidas", method: MethodAuto, suggested: "460", confidence: 60},
		{name: "conservative", category: "D-Salidas", method: MethodConservative, suggested: "460", confidence: 90},
		{name: "moderate", category: "D-Salidas", method: MethodModerate, suggested: "370", confidence: 75},
		{name: "aggressive", category: "D-Salidas", method: MethodAggressive, suggested: "400", confidence: 50},
		{name: "empty method is auto", category: "Café", suggested: "100", confidence: 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := c.Suggest(tt.category, tt.method)
			require.NoError(t, err)
			assert.True(t, dec(tt.suggested).Equal(s.Suggested), "got %s", s.Suggested)
			assert.Equal(t, tt.confidence, s.Confidence)
		})
	}

	s, err := c.Suggest("D-Salidas", MethodAuto)
	require.NoError(t, err)
	assert.True(t, dec("320").Equal(s.Minimum))
	assert.True(t, dec("506").Equal(s.Maximum))
	assert.True(t, dec("642.86").Equal(s.Trend))

	_, err = c.Suggest("Nope", MethodAuto)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = c.Suggest("Café", Method("yolo"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestCalculator_SuggestAll(t *testing.T) {
	all, err := NewCalculator(history()).SuggestAll(MethodAuto)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "D-Salidas", all[0].Category)
	assert.Equal(t, "Café", all[1].Category)
	assert.Equal(t, "Taxi", all[2].Category)
}

func TestCalculator_SpendingPattern(t *testing.T) {
	c := NewCalculator(history())

	p, err := c.SpendingPattern("D-Salidas")
	require.NoError(t, err)
	assert.True(t, dec("900").Equal(p.Total))
	assert.True(t, dec("300").Equal(p.MonthlyAverage))
	assert.True(t, dec("300").Equal(p.Median))
	assert.True(t, dec("163.3").Equal(p.StdDev))
	assert.True(t, dec("100").Equal(p.Min))
	assert.True(t, dec("500").Equal(p.Max))
	assert.Equal(t, 3, p.MonthsWithSpend)
	assert.Equal(t, 1, p.MonthsNoSpend)
	assert.InDelta(t, 75.0, p.Frequency, 1e-9)
	assert.Equal(t, TrendGrowing, p.Trend)

	p, err = c.SpendingPattern("Café")
	require.NoError(t, err)
	assert.Equal(t, TrendStable, p.Trend)

	p, err = c.SpendingPattern("Taxi")
	require.NoError(t, err)
	assert.Equal(t, TrendInsufficient, p.Trend)

	_, err = c.SpendingPattern("Nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodAuto, m)

	m, err = ParseMethod("moderate")
	require.NoError(t, err)
	assert.Equal(t, MethodModerate, m)

	_, err = ParseMethod("lavish")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAlertLevel(t *testing.T) {
	budget := dec("100")
	tests := []struct {
		spent string
		want  Level
	}{
		{spent: "0", want: LevelSafe},
		{spent: "69.99", want: LevelSafe},
		{spent: "-70", want: LevelWarning},
		{spent: "89.99", want: LevelWarning},
		{spent: "90", want: LevelDanger},
		{spent: "99.99", want: LevelDanger},
		{spent: "100", want: LevelExceeded},
		{spent: "-250", want: LevelExceeded},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlertLevel(dec(tt.spent), budget), "spent %s", tt.spent)
	}

	assert.Zero(t, Usage(dec("50"), decimal.Zero))
	assert.Equal(t, LevelSafe, AlertLevel(dec("50"), decimal.Zero))
}

func TestTrack(t *testing.T) {
	p := Track("Café", dec("-120"), dec("100"))
	assert.Equal(t, LevelExceeded, p.Level)
	assert.InDelta(t, 120, p.PercentageUsed, 1e-9)
	assert.True(t, dec("120").Equal(p.SpentAmount))
	assert.True(t, dec("-20").Equal(p.RemainingAmount))
}

func TestSummarize(t *testing.T) {
	budgets := map[string]decimal.Decimal{
		"Café":      dec("100"),
		"D-Salidas": dec("400"),
		"Taxi":      dec("50"),
	}
	expenses := map[string]decimal.Decimal{
		"cafe":      dec("-50"),
		"D-Salidas": dec("380"),
		"Cine":      dec("999"),
	}

	s := Summarize(budgets, expenses)
	assert.Equal(t, 3, s.Categories)
	assert.True(t, dec("550").Equal(s.TotalBudget))
	assert.True(t, dec("430").Equal(s.TotalSpent), "unbudgeted spend is ignored")
	assert.Equal(t, 2, s.Counts[LevelSafe])
	assert.Equal(t, 1, s.Counts[LevelDanger])
	assert.Equal(t, 0, s.Counts[LevelExceeded])

	require.Len(t, s.Progress, 3)
	assert.Equal(t, "D-Salidas", s.Progress[0].Category)
	assert.Equal(t, "Café", s.Progress[1].Category)
	assert.Equal(t, "Taxi", s.Progress[2].Category)
}

func TestSpentInAndAllocations(t *testing.T) {
	spent := SpentIn(history(), "2024-04")
	assert.Len(t, spent, 2)
	assert.True(t, dec("500").Equal(spent["D-Salidas"]))

	all, err := NewCalculator(history()).SuggestAll(MethodAggressive)
	require.NoError(t, err)
	alloc := Allocations(all)
	assert.True(t, dec("80").Equal(alloc["Taxi"]))
}

func TestStatisticsHelpers(t *testing.T) {
	assert.InDelta(t, 300, percentile([]float64{500, 100, 300}, 50), 1e-9)
	assert.InDelta(t, 100, percentile([]float64{500, 100, 300}, 0), 1e-9)
	assert.InDelta(t, 500, percentile([]float64{500, 100, 300}, 100), 1e-9)
	assert.InDelta(t, 250, percentile([]float64{100, 200, 300, 400}, 50), 1e-9)
	assert.InDelta(t, 42, percentile([]float64{42}, 90), 1e-9)
	assert.Zero(t, percentile(nil, 50))

	assert.Zero(t, mean(nil))
	assert.Zero(t, stddev(nil))
	assert.InDelta(t, 2, stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)

	slope, intercept := linearFit([]float64{0, 1, 2}, []float64{1, 3, 5})
	assert.InDelta(t, 2, slope, 1e-9)
	assert.InDelta(t, 1, intercept, 1e-9)

	slope, intercept = linearFit([]float64{1, 1}, []float64{4, 6})
	assert.Zero(t, slope)
	assert.InDelta(t, 5, intercept, 1e-9, "a vertical series falls back to the mean")
}
