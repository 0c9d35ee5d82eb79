package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/hierarchy"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

var idealMix = []hierarchy.TierTarget{
	{Tier: model.TierEssential, Percent: 50},
	{Tier: model.TierBasic, Percent: 30},
	{Tier: model.TierDiscretionary, Percent: 20},
}

func endToEndRecords() []model.ClassifiedRecord {
	return []model.ClassifiedRecord{
		testutil.Expense("N-Alimentación", "necesario", model.TierEssential, 2024, 1, -150000),
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 500000),
		testutil.Expense("N-Alimentación", "necesario", model.TierEssential, 2024, 2, -145000),
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 2, 500000),
	}
}

func TestSavingsRate(t *testing.T) {
	t.Run("end to end", func(t *testing.T) {
		rate, err := SavingsRate(endToEndRecords())
		require.NoError(t, err)
		assert.InDelta(t, 0.705, rate, 1e-12)
	})

	t.Run("income 100 expense 60", func(t *testing.T) {
		rate, err := SavingsRate([]model.ClassifiedRecord{
			testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 100),
			testutil.Expense("D-Salidas", "discrecional", model.TierDiscretionary, 2024, 1, -60),
		})
		require.NoError(t, err)
		assert.InDelta(t, 0.40, rate, 1e-12)
	})

	t.Run("zero income is undefined", func(t *testing.T) {
		_, err := SavingsRate([]model.ClassifiedRecord{
			testutil.Expense("D-Salidas", "discrecional", model.TierDiscretionary, 2024, 1, -60),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrUndefinedMetric)

		var undefined *common.UndefinedMetricError
		require.ErrorAs(t, err, &undefined)
		assert.Equal(t, MetricSavingsRate, undefined.Metric)
	})
}

func TestEmergencyRunway(t *testing.T) {
	records := endToEndRecords()

	// Essential average is (150000 + 145000) / 2 = 147500.
	months, err := EmergencyRunway(decimal.NewFromInt(885000), records)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, months, 1e-9)

	assert.Equal(t, 2, MonthCount(records))
	assert.True(t, decimal.NewFromInt(147500).Equal(EssentialMonthlyExpense(records)))

	_, err = EmergencyRunway(decimal.NewFromInt(1000), records[1:2])
	assert.ErrorIs(t, err, common.ErrUndefinedMetric)
}

func TestCategoryMixDeviation(t *testing.T) {
	records := []model.ClassifiedRecord{
		testutil.Expense("N-Alimentación", "necesario", model.TierEssential, 2024, 1, -600),
		testutil.Expense("B-Transporte", "basico", model.TierBasic, 2024, 1, -200),
		testutil.Expense("D-Salidas", "discrecional", model.TierDiscretionary, 2024, 1, -100),
		testutil.NewRecord("Regalo Misterioso", 2024, 1, -100).Build(),
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 5000),
	}

	mix := CategoryMixDeviation(records, idealMix)
	require.Len(t, mix.Entries, 3)
	assert.True(t, decimal.NewFromInt(1000).Equal(mix.TotalExpense))

	essential, ok := mix.Entry(model.TierEssential)
	require.True(t, ok)
	assert.InDelta(t, 60.0, essential.Actual, 1e-9)
	assert.InDelta(t, 10.0, essential.Delta, 1e-9)

	basic, _ := mix.Entry(model.TierBasic)
	assert.InDelta(t, 20.0, basic.Actual, 1e-9)
	assert.InDelta(t, -10.0, basic.Delta, 1e-9)

	assert.InDelta(t, 10.0, mix.Other.Actual, 1e-9)
	assert.True(t, decimal.NewFromInt(100).Equal(mix.Other.Amount))

	// |60-50| + |20-30| + |10-20|
	assert.InDelta(t, 30.0, mix.TotalDeviation, 1e-9)
}

func TestCategoryMixDeviation_NoExpense(t *testing.T) {
	mix := CategoryMixDeviation([]model.ClassifiedRecord{
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 5000),
	}, idealMix)

	for _, e := range mix.Entries {
		assert.Zero(t, e.Actual)
	}
	assert.InDelta(t, 100.0, mix.TotalDeviation, 1e-9)
}

func TestHealthScore_SavingsTiers(t *testing.T) {
	tests := []struct {
		rate float64
		want float64
	}{
		{rate: 0.30, want: 40},
		{rate: 0.299, want: 30},
		{rate: 0.20, want: 30},
		{rate: 0.1999, want: 20},
		{rate: 0.10, want: 20},
		{rate: 0.05, want: 5},
		{rate: -0.5, want: 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, SavingsPoints(tt.rate), 1e-9, "rate %v", tt.rate)
	}
}

func TestHealthScore_RunwayTiers(t *testing.T) {
	assert.Equal(t, 30.0, RunwayPoints(6))
	assert.Equal(t, 20.0, RunwayPoints(5.99))
	assert.Equal(t, 20.0, RunwayPoints(3))
	assert.Equal(t, 10.0, RunwayPoints(1))
	assert.Equal(t, 0.0, RunwayPoints(0.99))
	assert.Equal(t, 0.0, RunwayPoints(-2))
}

func TestHealthScore(t *testing.T) {
	perfect := MixDeviation{TotalDeviation: 0}

	h := HealthScore(0.30, 6, perfect)
	assert.Equal(t, 100.0, h.Score)
	assert.Equal(t, BandExcellent, h.Band)

	h = HealthScore(0.299, 6, perfect)
	assert.Equal(t, 90.0, h.Score)

	// 20 + 10 + (30 - 30/3) = 50
	h = HealthScore(0.10, 1, MixDeviation{TotalDeviation: 30})
	assert.Equal(t, 50.0, h.Score)
	assert.Equal(t, BandFair, h.Band)

	h = HealthScore(0, 0, MixDeviation{TotalDeviation: 200})
	assert.Equal(t, 0.0, h.Score)
	assert.Equal(t, 0.0, h.Mix)
	assert.Equal(t, BandNeedsAttention, h.Band)

	// 79.6 rounds to 80, which is excellent.
	h = HealthScore(0.30, 1, MixDeviation{TotalDeviation: 1.2})
	assert.Equal(t, 80.0, h.Score)
	assert.Equal(t, BandExcellent, h.Band)

	// 59.4 rounds to 59 and stays fair.
	h = HealthScore(0.20, 1, MixDeviation{TotalDeviation: 31.8})
	assert.Equal(t, 59.0, h.Score)
	assert.Equal(t, BandFair, h.Band)
	assert.Equal(t, BandFor(h.Score), h.Band)
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandExcellent, BandFor(80))
	assert.Equal(t, BandGood, BandFor(79.99))
	assert.Equal(t, BandGood, BandFor(60))
	assert.Equal(t, BandFair, BandFor(40))
	assert.Equal(t, BandNeedsAttention, BandFor(39.9))
}

func TestTopNExpenses(t *testing.T) {
	records := []model.ClassifiedRecord{
		testutil.Expense("Zapatos", "discrecional", model.TierDiscretionary, 2024, 1, -500),
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 10000),
		testutil.Expense("Alquiler", "necesario", model.TierEssential, 2024, 1, -2000),
		testutil.Expense("Cine", "discrecional", model.TierDiscretionary, 2024, 1, -500),
		testutil.Expense("Bar", "discrecional", model.TierDiscretionary, 2024, 2, -100),
	}

	top := TopNExpenses(records, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "Alquiler", top[0].Category)
	assert.Equal(t, "Cine", top[1].Category)
	assert.Equal(t, "Zapatos", top[2].Category)

	assert.Len(t, TopNExpenses(records, 10), 4)
	assert.Empty(t, TopNExpenses(records, 0))

	// Input order does not matter.
	reversed := make([]model.ClassifiedRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	assert.Equal(t, top, TopNExpenses(reversed, 3))
}

func TestCompute_EndToEnd(t *testing.T) {
	doc, err := hierarchy.Parse([]byte(testutil.MinimalHierarchyYAML))
	require.NoError(t, err)

	report := Compute(endToEndRecords(), doc, decimal.NewFromInt(705000))

	assert.True(t, report.SavingsRate.Defined)
	assert.InDelta(t, 0.705, report.SavingsRate.Value, 1e-12)
	assert.True(t, report.Totals.Income.Equal(decimal.NewFromInt(1000000)))
	assert.True(t, report.Totals.Expense.Equal(decimal.NewFromInt(295000)))
	assert.Equal(t, 2, report.Months)
	assert.Equal(t, 4, report.Records)

	// 705000 / 147500 = 4.78 months.
	assert.True(t, report.Runway.Defined)
	assert.InDelta(t, 4.7797, report.Runway.Value, 1e-4)

	// All expense is essential: deviation 50+30+20 leaves no mix points.
	assert.Equal(t, 40.0, report.Health.Savings)
	assert.Equal(t, 20.0, report.Health.Runway)
	assert.Equal(t, 0.0, report.Health.Mix)
	assert.Equal(t, 60.0, report.Health.Score)
	assert.Equal(t, BandGood, report.Health.Band)

	templates := make([]string, 0, len(report.Insights))
	for _, in := range report.Insights {
		templates = append(templates, in.Template)
	}
	assert.Equal(t, []string{InsightEssentialHigh, InsightRunwayBelowTarget, InsightTopCategory}, templates)
}

func TestCompute_Undefined(t *testing.T) {
	doc, err := hierarchy.Parse([]byte(testutil.MinimalHierarchyYAML))
	require.NoError(t, err)

	report := Compute(nil, doc, decimal.Zero)
	assert.False(t, report.SavingsRate.Defined)
	assert.NotEmpty(t, report.SavingsRate.Reason)
	assert.False(t, report.Runway.Defined)
	assert.Empty(t, report.Insights)
}
