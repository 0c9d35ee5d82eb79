package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-ledger/internal/model"
)

// RecordBuilder builds a classified record for a calendar month.
//
//	rec := testutil.NewRecord("N-Alimentación", 2024, 1, -150000).
//		Group("necesario", model.KindExpense).
//		Tier(model.TierEssential).
//		Build()
type RecordBuilder struct {
	rec model.ClassifiedRecord
}

// NewRecord starts a record for category in year/month with amount.
func NewRecord(category string, year, month int, amount int64) *RecordBuilder {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return &RecordBuilder{rec: model.ClassifiedRecord{
		LongRecord: model.LongRecord{
			PeriodStart: start,
			PeriodEnd:   start.AddDate(0, 1, -1),
			Amount:      decimal.NewFromInt(amount),
			Category:    category,
			Year:        year,
			Month:       month,
			MonthName:   model.MonthName(month),
			Quarter:     model.QuarterOf(month),
		},
		PrimaryCategory: category,
		Kind:            model.KindUnclassified,
		Source:          model.SourceNone,
	}}
}

// Group sets the group id and kind.
func (b *RecordBuilder) Group(id string, kind model.GroupKind) *RecordBuilder {
	b.rec.GroupID = id
	b.rec.GroupName = id
	b.rec.Kind = kind
	b.rec.Source = model.SourcePrefix
	return b
}

// Tier sets the expense tier.
func (b *RecordBuilder) Tier(t model.Tier) *RecordBuilder {
	b.rec.Tier = t
	return b
}

// Primary sets the primary category and subcategory.
func (b *RecordBuilder) Primary(primary, sub string) *RecordBuilder {
	b.rec.PrimaryCategory = primary
	b.rec.Subcategory = sub
	return b
}

// Amount overrides the amount with a decimal string.
func (b *RecordBuilder) Amount(s string) *RecordBuilder {
	b.rec.Amount = decimal.RequireFromString(s)
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.ClassifiedRecord {
	return b.rec
}

// Expense is shorthand for an expense record of a tiered group.
func Expense(category, group string, tier model.Tier, year, month int, amount int64) model.ClassifiedRecord {
	return NewRecord(category, year, month, amount).Group(group, model.KindExpense).Tier(tier).Build()
}

// Income is shorthand for an income record.
func Income(category, group string, year, month int, amount int64) model.ClassifiedRecord {
	return NewRecord(category, year, month, amount).Group(group, model.KindIncome).Build()
}
