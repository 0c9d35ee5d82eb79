package hierarchy

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/testutil"
)

func TestLoad(t *testing.T) {
	path := testutil.WriteFile(t, "categories.yaml", testutil.HierarchyYAML)

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "2.1", doc.Version)
	assert.Equal(t, "Categorías", doc.CategoryColumn)
	assert.Equal(t, []string{"necesario", "basico", "discrecional", "ingreso_regular", "ingreso_ocasional", "especiales"}, doc.AllGroupIDs())

	g, ok := doc.Group("necesario")
	require.True(t, ok)
	assert.Equal(t, model.KindExpense, g.Kind)
	assert.Equal(t, model.TierEssential, g.Tier)
	assert.Equal(t, "Necesario", g.Label())

	special, ok := doc.Group("especiales")
	require.True(t, ok)
	assert.False(t, special.HasPrefix())
	assert.Equal(t, model.KindMixed, special.Kind)

	assert.Equal(t, []string{"necesario"}, doc.EssentialGroupIDs())
	assert.Equal(t, []string{"Alquiler", "Expensas"}, doc.Subcategories("n-vivienda"))
	assert.Equal(t, "$", doc.Currency.Symbol)
	assert.Equal(t, ".", doc.Currency.ThousandsSep)
	assert.Equal(t, 0, doc.Currency.DecimalPlaces)

	ctx := doc.Contextual()
	require.Len(t, ctx, 1)
	assert.Equal(t, "Otros", ctx[0].Name)
	assert.Equal(t, model.KindIncome, ctx[0].IfPositive.Kind)
	assert.Equal(t, "Otros Gastos", ctx[0].IfNegative.Category)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("/nonexistent/categories.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestDocument_Accessors(t *testing.T) {
	doc, err := Parse([]byte(testutil.HierarchyYAML))
	require.NoError(t, err)

	g, ok := doc.GroupForPrefix("N-Alimentación")
	require.True(t, ok)
	assert.Equal(t, "necesario", g.ID)

	g, ok = doc.GroupForPrefix("  b-transporte")
	require.True(t, ok)
	assert.Equal(t, "basico", g.ID)

	_, ok = doc.GroupForPrefix("Otros")
	assert.False(t, ok)

	assert.Equal(t, 50.0, doc.IdealRatio(model.TierEssential))
	assert.Equal(t, 30.0, doc.IdealRatio(model.TierBasic))
	assert.Equal(t, 20.0, doc.IdealRatio(model.TierDiscretionary))
	assert.Equal(t, 0.0, doc.IdealRatio(model.TierNone))

	mix := doc.IdealMix()
	require.Len(t, mix, 3)
	assert.Equal(t, model.TierEssential, mix[0].Tier)

	assert.Equal(t,
		[]string{"Gastos", "Ingresos", "Ganancia Neta", "N-Vivienda", "B-Transporte"},
		doc.TotalRowNames())
}

func TestParse_Defaults(t *testing.T) {
	doc, err := Parse([]byte(testutil.MinimalHierarchyYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultCategoryColumn, doc.CategoryColumn)
	assert.Equal(t, DefaultSummaryRows, doc.SummaryRows())
	assert.Equal(t, DefaultCurrencyFormat(), doc.Currency, "a missing currency_format is not an error")
	assert.Equal(t, 50.0, doc.IdealRatio(model.TierEssential))
	assert.True(t, doc.ExcludeParents)
}

func TestParse_RulesSortedByPriority(t *testing.T) {
	yaml := `groups:
  a: {prefix: "A-", kind: expense}
  b: {prefix: "B-", kind: expense}
classification_rules:
  - {kind: prefix, priority: 5, patterns: [{prefix: "A-", group_id: a}]}
  - {kind: prefix, priority: 1, patterns: [{prefix: "B-", group_id: b}]}
  - {kind: exact, priority: 1, patterns: [{prefix: "Bonus", group_id: b}]}
category_hierarchy: {}
`
	doc, err := Parse([]byte(yaml))
	require.NoError(t, err)

	rules := doc.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, 1, rules[0].Index)
	assert.Equal(t, 2, rules[1].Index)
	assert.Equal(t, RuleExact, rules[1].Kind)
	assert.Equal(t, 0, rules[2].Index)
}

func TestParse_Errors(t *testing.T) {
	base := func(replace, with string) string {
		return strings.Replace(testutil.HierarchyYAML, replace, with, 1)
	}

	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{
			name:      "missing groups",
			input:     "classification_rules: []\ncategory_hierarchy: {}\n",
			wantField: "groups",
		},
		{
			name:      "missing rules",
			input:     "groups:\n  a: {prefix: \"A-\", kind: expense}\ncategory_hierarchy: {}\n",
			wantField: "classification_rules",
		},
		{
			name:      "missing hierarchy",
			input:     "groups:\n  a: {prefix: \"A-\", kind: expense}\nclassification_rules: []\n",
			wantField: "category_hierarchy",
		},
		{
			name:      "rule references undefined group",
			input:     base("group_id: ingreso_ocasional\ncategory_hierarchy", "group_id: ghost\ncategory_hierarchy"),
			wantField: "classification_rules[0].patterns[4].group_id",
		},
		{
			name:      "overlapping group prefixes",
			input:     base(`prefix: "D-"`, `prefix: "N-Extra"`),
			wantField: "groups.discrecional.prefix",
		},
		{
			name:      "hierarchy references undefined group",
			input:     base("  especiales:\n    Inversiones:", "  fantasma:\n    Inversiones:"),
			wantField: "category_hierarchy.fantasma",
		},
		{
			name:      "invalid kind",
			input:     base("kind: mixed", "kind: transfer"),
			wantField: "groups.especiales.kind",
		},
		{
			name:      "tier on income group",
			input:     base("kind: income\n  ingreso_ocasional", "kind: income\n    tier: basic\n  ingreso_ocasional"),
			wantField: "groups.ingreso_regular.tier",
		},
		{
			name:      "contextual undefined group",
			input:     base("group_id: discrecional\n      category: Otros Gastos", "group_id: nope\n      category: Otros Gastos"),
			wantField: "contextual_categories.Otros.if_negative.group_id",
		},
		{
			name:      "ideal mix does not sum to 100",
			input:     base("discretionary: 20", "discretionary: 25"),
			wantField: "ideal_mix",
		},
		{
			name:      "bad symbol position",
			input:     base("symbol_position: before", "symbol_position: middle"),
			wantField: "currency_format.symbol_position",
		},
		{
			name:      "duplicate category name after normalization",
			input:     base("    D-Salidas:", "    n-alimentacion:"),
			wantField: "category_hierarchy.discrecional.n-alimentacion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)

			var cfgErr *common.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not yaml", input: "groups: [unclosed"},
		{name: "unknown key", input: testutil.HierarchyYAML + "unexpected: true\n"},
		{name: "groups not a mapping", input: "groups: [a, b]\nclassification_rules: []\ncategory_hierarchy: {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}
