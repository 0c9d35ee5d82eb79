package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

func sampleRecords() []model.ClassifiedRecord {
	return []model.ClassifiedRecord{
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 2, 1000),
		testutil.Expense("N-Alimentación", "necesario", model.TierEssential, 2024, 1, -300),
		testutil.Expense("N-Alimentación", "necesario", model.TierEssential, 2024, 2, -500),
		testutil.Expense("D-Salidas", "discrecional", model.TierDiscretionary, 2024, 1, -100),
		testutil.Income("R-Sueldo", "ingreso_regular", 2024, 1, 1000),
		testutil.NewRecord("Misterio", 2023, 12, -50).Build(),
	}
}

func amount(t *testing.T, p *Pivot, row, col string) decimal.Decimal {
	t.Helper()
	c, ok := p.Value(row, col)
	require.True(t, ok, "cell %s/%s", row, col)
	return c.Value
}

func TestBuildPivot_GroupByPeriod(t *testing.T) {
	p, err := BuildPivot(sampleRecords(), DimGroup, DimPeriod, AggSum)
	require.NoError(t, err)

	keys := func(hs []Header) []string {
		out := make([]string, 0, len(hs))
		for _, h := range hs {
			out = append(out, h.Key)
		}
		return out
	}
	assert.Equal(t, []string{"2023-12", "2024-01", "2024-02"}, keys(p.Columns))
	assert.Equal(t, []string{"discrecional", "ingreso_regular", "necesario", model.UnclassifiedGroup}, keys(p.Rows))

	assert.True(t, decimal.NewFromInt(-300).Equal(amount(t, p, "necesario", "2024-01")))
	assert.True(t, decimal.NewFromInt(-50).Equal(amount(t, p, model.UnclassifiedGroup, "2023-12")))

	empty, ok := p.Value("discrecional", "2024-02")
	require.True(t, ok)
	assert.Zero(t, empty.Count)
	assert.True(t, empty.Value.IsZero())

	_, ok = p.Value("nope", "2024-01")
	assert.False(t, ok)

	assert.True(t, decimal.NewFromInt(1050).Equal(p.Grand.Value))
	assert.Equal(t, 6, p.Grand.Count)
}

func TestBuildPivot_TotalsReaggregate(t *testing.T) {
	p, err := BuildPivot(sampleRecords(), DimGroup, DimYear, AggMean)
	require.NoError(t, err)

	// necesario: (-300 + -500) / 2, not the mean of cell means.
	for i, r := range p.Rows {
		if r.Key == "necesario" {
			assert.True(t, decimal.NewFromInt(-400).Equal(p.RowTotals[i].Value))
		}
	}

	// 2024 column: mean of five records.
	for j, c := range p.Columns {
		if c.Key == "2024" {
			assert.True(t, decimal.NewFromInt(220).Equal(p.ColTotals[j].Value))
			assert.Equal(t, 5, p.ColTotals[j].Count)
		}
	}
	assert.True(t, decimal.NewFromInt(175).Equal(p.Grand.Value))
}

func TestBuildPivot_Aggregations(t *testing.T) {
	records := sampleRecords()
	tests := []struct {
		agg  Aggregation
		want int64
	}{
		{agg: AggSum, want: -800},
		{agg: AggMean, want: -400},
		{agg: AggCount, want: 2},
		{agg: AggMin, want: -500},
		{agg: AggMax, want: -300},
	}
	for _, tt := range tests {
		t.Run(string(tt.agg), func(t *testing.T) {
			p, err := BuildPivot(records, DimCategory, DimNone, tt.agg)
			require.NoError(t, err)
			require.Len(t, p.Columns, 1)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(amount(t, p, "N-Alimentación", "total")))
		})
	}
}

func TestBuildPivot_MonthOrderIsChronological(t *testing.T) {
	records := []model.ClassifiedRecord{
		testutil.Expense("A", "necesario", model.TierEssential, 2024, 12, -1),
		testutil.Expense("A", "necesario", model.TierEssential, 2024, 2, -1),
		testutil.Expense("A", "necesario", model.TierEssential, 2024, 10, -1),
	}
	p, err := BuildPivot(records, DimMonth, DimNone, AggSum)
	require.NoError(t, err)

	labels := make([]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"February", "October", "December"}, labels)
}

func TestBuildPivot_Errors(t *testing.T) {
	_, err := BuildPivot(nil, DimNone, DimYear, AggSum)
	require.ErrorIs(t, err, ErrUnknownDimension)

	_, err = BuildPivot(nil, Dimension("weekday"), DimNone, AggSum)
	require.ErrorIs(t, err, ErrUnknownDimension)

	_, err = BuildPivot(nil, DimGroup, DimNone, Aggregation("median"))
	require.ErrorIs(t, err, ErrUnknownAggregation)

	p, err := BuildPivot(nil, DimGroup, DimNone, "")
	require.NoError(t, err)
	assert.Equal(t, AggSum, p.Agg)
	assert.Empty(t, p.Rows)
}

func TestParseDimensionAndAggregation(t *testing.T) {
	d, err := ParseDimension("primary_category")
	require.NoError(t, err)
	assert.Equal(t, DimPrimary, d)

	a, err := ParseAggregation("")
	require.NoError(t, err)
	assert.Equal(t, AggSum, a)

	_, err = ParseAggregation("avg")
	assert.ErrorIs(t, err, ErrUnknownAggregation)
}
