package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRecords())

	assert.Equal(t, 6, s.Records)
	assert.Equal(t, 4, s.Categories)
	assert.Equal(t, 3, s.Periods)
	assert.Equal(t, 4, s.Groups)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), s.From)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), s.To)
	assert.True(t, decimal.NewFromInt(2000).Equal(s.Totals.Income))
	assert.True(t, decimal.NewFromInt(950).Equal(s.Totals.Expense))
	assert.True(t, decimal.NewFromInt(1050).Equal(s.Totals.Net))

	empty := Summarize(nil)
	assert.Zero(t, empty.Records)
	assert.True(t, empty.From.IsZero())
}

func TestMonthlyFlow(t *testing.T) {
	flow := MonthlyFlow(sampleRecords())
	require.Len(t, flow, 3)

	assert.Equal(t, "2023-12", flow[0].Key)
	assert.Equal(t, "2024-01", flow[1].Key)
	assert.Equal(t, 2024, flow[1].Year)
	assert.Equal(t, 1, flow[1].Month)
	assert.True(t, decimal.NewFromInt(1000).Equal(flow[1].Income))
	assert.True(t, decimal.NewFromInt(400).Equal(flow[1].Expense))
	assert.True(t, decimal.NewFromInt(600).Equal(flow[1].Net))
	assert.True(t, decimal.NewFromInt(500).Equal(flow[2].Net))
}

func TestGroupTotals(t *testing.T) {
	groups := GroupTotals(sampleRecords())
	require.Len(t, groups, 4)

	assert.Equal(t, "ingreso_regular", groups[0].GroupID)
	assert.True(t, decimal.NewFromInt(2000).Equal(groups[0].Income))
	assert.Zero(t, groups[0].Share)

	assert.Equal(t, "necesario", groups[1].GroupID)
	assert.Equal(t, model.KindExpense, groups[1].Kind)
	assert.Equal(t, 2, groups[1].Records)
	assert.True(t, decimal.NewFromInt(800).Equal(groups[1].Expense))
	assert.InDelta(t, 84.21, groups[1].Share, 0.01)

	assert.Equal(t, "discrecional", groups[2].GroupID)
	assert.Equal(t, model.UnclassifiedGroup, groups[3].GroupID)
	assert.Equal(t, model.UnclassifiedGroup, groups[3].Name)

	total := 0.0
	for _, g := range groups {
		total += g.Share
	}
	assert.InDelta(t, 100, total, 1e-6)
}

func TestSummarize_CountsRawNames(t *testing.T) {
	s := Summarize([]model.ClassifiedRecord{
		testutil.Expense("N-Café", "necesario", model.TierEssential, 2024, 1, -5),
		testutil.Expense("n-cafe", "necesario", model.TierEssential, 2024, 1, -7),
		testutil.Expense("n-cafe ", "necesario", model.TierEssential, 2024, 2, -7),
	})
	assert.Equal(t, 2, s.Categories, "names colliding after normalization count separately")
}
