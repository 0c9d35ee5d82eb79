// Package hierarchy loads and validates the category hierarchy document:
// groups, classification rules, the category tree and display settings.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Defaults applied when the document omits optional sections.
const (
	DefaultCategoryColumn = "Categorías"
	ClassifyByAmountSign  = "amount_sign"
)

// DefaultSummaryRows are the aggregate rows of the usual timeline export.
var DefaultSummaryRows = []string{"Gastos", "Ingresos", "Ganancia Neta"}

// DefaultIdealMix is the 50/30/20 target spending mix, in percent.
var DefaultIdealMix = map[model.Tier]float64{
	model.TierEssential:     50,
	model.TierBasic:         30,
	model.TierDiscretionary: 20,
}

// RuleKind selects how a rule's patterns match names.
type RuleKind string

// Rule kinds.
const (
	RulePrefix RuleKind = "prefix"
	RuleExact  RuleKind = "exact"
)

// Pattern maps a literal name prefix (or exact name) to a group.
type Pattern struct {
	Prefix  string
	GroupID string
}

// Rule is an ordered set of patterns evaluated at one priority.
type Rule struct {
	Kind     RuleKind
	Patterns []Pattern
	Priority int
	Index    int
}

// Category is one node of the category tree.
type Category struct {
	Name          string
	GroupID       string
	Subcategories []string
}

// Contextual is a category whose group depends on each amount's sign.
type Contextual struct {
	Name       string
	ClassifyBy string
	IfPositive model.SignTarget
	IfNegative model.SignTarget
}

// CurrencyFormat describes how amounts are displayed.
type CurrencyFormat struct {
	Symbol         string `yaml:"symbol"`
	ThousandsSep   string `yaml:"thousands_sep"`
	DecimalSep     string `yaml:"decimal_sep"`
	SymbolPosition string `yaml:"symbol_position"`
	DecimalPlaces  int    `yaml:"decimal_places"`
}

// DefaultCurrencyFormat is used when the document has no currency_format.
func DefaultCurrencyFormat() CurrencyFormat {
	return CurrencyFormat{
		Symbol:         "$",
		ThousandsSep:   ",",
		DecimalSep:     ".",
		DecimalPlaces:  2,
		SymbolPosition: "before",
	}
}

// Document is a loaded, validated hierarchy. It is immutable after Load.
type Document struct {
	groups         map[string]model.Group
	idealMix       map[model.Tier]float64
	hierarchy      map[string][]Category
	Path           string
	Version        string
	CategoryColumn string
	groupOrder     []string
	rules          []Rule
	contextual     []Contextual
	summaryRows    []string
	Currency       CurrencyFormat
	ExcludeParents bool
}

// Group returns the group with the given id.
func (d *Document) Group(id string) (model.Group, bool) {
	g, ok := d.groups[id]
	return g, ok
}

// Groups returns all groups in declaration order.
func (d *Document) Groups() []model.Group {
	out := make([]model.Group, 0, len(d.groupOrder))
	for _, id := range d.groupOrder {
		out = append(out, d.groups[id])
	}
	return out
}

// AllGroupIDs returns every group id in declaration order.
func (d *Document) AllGroupIDs() []string {
	return append([]string(nil), d.groupOrder...)
}

// GroupForPrefix returns the group whose declared prefix starts name.
// Group prefixes never overlap, so at most one group matches.
func (d *Document) GroupForPrefix(name string) (model.Group, bool) {
	key := common.Normalize(name)
	for _, id := range d.groupOrder {
		g := d.groups[id]
		if g.HasPrefix() && strings.HasPrefix(key, common.Normalize(*g.Prefix)) {
			return g, true
		}
	}
	return model.Group{}, false
}

// IdealRatio returns the target share (percent of total expense) for a tier.
func (d *Document) IdealRatio(tier model.Tier) float64 {
	return d.idealMix[tier]
}

// IdealMix returns the configured tiers and their targets, ordered
// essential, basic, discretionary.
func (d *Document) IdealMix() []TierTarget {
	out := make([]TierTarget, 0, len(d.idealMix))
	for _, tier := range []model.Tier{model.TierEssential, model.TierBasic, model.TierDiscretionary} {
		if pct, ok := d.idealMix[tier]; ok {
			out = append(out, TierTarget{Tier: tier, Percent: pct})
		}
	}
	return out
}

// TierTarget is a tier's target share of spending.
type TierTarget struct {
	Tier    model.Tier
	Percent float64
}

// Rules returns the classification rules sorted by ascending priority,
// ties kept in declaration order.
func (d *Document) Rules() []Rule {
	out := append([]Rule(nil), d.rules...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// Categories returns the category tree of one group in declaration order.
func (d *Document) Categories(groupID string) []Category {
	return append([]Category(nil), d.hierarchy[groupID]...)
}

// Subcategories returns the subcategories of a top-level category.
func (d *Document) Subcategories(category string) []string {
	for _, id := range d.groupOrder {
		for _, c := range d.hierarchy[id] {
			if common.SameName(c.Name, category) {
				return append([]string(nil), c.Subcategories...)
			}
		}
	}
	return nil
}

// Contextual returns the sign-routed categories.
func (d *Document) Contextual() []Contextual {
	return append([]Contextual(nil), d.contextual...)
}

// SummaryRows returns the configured aggregate row labels.
func (d *Document) SummaryRows() []string {
	return append([]string(nil), d.summaryRows...)
}

// TotalRowNames returns every row label that is an aggregate of other rows:
// the summary rows plus, when enabled, parents that declare subcategories.
func (d *Document) TotalRowNames() []string {
	out := d.SummaryRows()
	if !d.ExcludeParents {
		return out
	}
	for _, id := range d.groupOrder {
		for _, c := range d.hierarchy[id] {
			if len(c.Subcategories) > 0 {
				out = append(out, c.Name)
			}
		}
	}
	return out
}

// EssentialGroupIDs returns the groups in the lowest-discretion tier.
func (d *Document) EssentialGroupIDs() []string {
	var out []string
	for _, id := range d.groupOrder {
		if d.groups[id].Tier == model.TierEssential {
			out = append(out, id)
		}
	}
	return out
}
