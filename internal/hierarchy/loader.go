package hierarchy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// entry is one key/value pair of a YAML mapping.
type entry[T any] struct {
	Key   string
	Value T
}

// ordered decodes a YAML mapping while keeping key order.
type ordered[T any] []entry[T]

func (o *ordered[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(ordered[T], 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v T
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("%s: %w", node.Content[i].Value, err)
		}
		out = append(out, entry[T]{Key: node.Content[i].Value, Value: v})
	}
	*o = out
	return nil
}

type rawGroup struct {
	Prefix      *string `yaml:"prefix"`
	Code        string  `yaml:"code"`
	DisplayName string  `yaml:"display_name"`
	Description string  `yaml:"description"`
	Color       string  `yaml:"color"`
	Kind        string  `yaml:"kind"`
	Tier        string  `yaml:"tier"`
}

type rawPattern struct {
	Prefix  string `yaml:"prefix"`
	GroupID string `yaml:"group_id"`
}

type rawRule struct {
	Priority *int         `yaml:"priority"`
	Kind     string       `yaml:"kind"`
	Patterns []rawPattern `yaml:"patterns"`
}

type rawCategory struct {
	Subcategories []string `yaml:"subcategories"`
}

type rawContextual struct {
	ClassifyBy string           `yaml:"classify_by"`
	IfPositive model.SignTarget `yaml:"if_positive"`
	IfNegative model.SignTarget `yaml:"if_negative"`
}

type rawDocument struct {
	Groups              *ordered[rawGroup]             `yaml:"groups"`
	Rules               *[]rawRule                     `yaml:"classification_rules"`
	Hierarchy           *ordered[ordered[rawCategory]] `yaml:"category_hierarchy"`
	Contextual          ordered[rawContextual]         `yaml:"contextual_categories"`
	Currency            *CurrencyFormat                `yaml:"currency_format"`
	IdealMix            map[string]float64             `yaml:"ideal_mix"`
	ExcludeParentTotals *bool                          `yaml:"exclude_parent_totals"`
	SummaryRows         *[]string                      `yaml:"summary_rows"`
	Version             string                         `yaml:"version"`
	CategoryColumn      string                         `yaml:"category_column"`
}

// Load reads and validates the hierarchy document at path. Any problem is
// returned as a *common.ConfigError; nothing is loaded partially.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &common.ConfigError{Err: common.ErrMissingConfig, Field: path, Reason: "file not found"}
		}
		return nil, &common.ConfigError{Err: err, Field: path, Reason: "failed to read"}
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.Path = path

	slog.Info("Loaded category hierarchy",
		"path", path,
		"version", doc.Version,
		"groups", len(doc.groupOrder),
		"rules", len(doc.rules))

	return doc, nil
}

// Parse decodes and validates a hierarchy document.
func Parse(data []byte) (*Document, error) {
	var raw rawDocument
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, common.NewConfigError("", "document is empty")
		}
		return nil, &common.ConfigError{Err: err, Reason: "malformed document: " + err.Error()}
	}

	switch {
	case raw.Groups == nil || len(*raw.Groups) == 0:
		return nil, common.NewConfigError("groups", "required key missing or empty")
	case raw.Rules == nil:
		return nil, common.NewConfigError("classification_rules", "required key missing")
	case raw.Hierarchy == nil:
		return nil, common.NewConfigError("category_hierarchy", "required key missing")
	}

	// currency_format is optional; documents without it get the defaults.
	doc := &Document{
		groups:         make(map[string]model.Group, len(*raw.Groups)),
		hierarchy:      make(map[string][]Category),
		Version:        raw.Version,
		CategoryColumn: strings.TrimSpace(raw.CategoryColumn),
		ExcludeParents: true,
		Currency:       DefaultCurrencyFormat(),
	}
	if doc.CategoryColumn == "" {
		doc.CategoryColumn = DefaultCategoryColumn
	}
	if raw.ExcludeParentTotals != nil {
		doc.ExcludeParents = *raw.ExcludeParentTotals
	}
	if raw.SummaryRows != nil {
		doc.summaryRows = append([]string(nil), *raw.SummaryRows...)
	} else {
		doc.summaryRows = append([]string(nil), DefaultSummaryRows...)
	}

	if err := doc.buildGroups(*raw.Groups); err != nil {
		return nil, err
	}
	if err := doc.buildRules(*raw.Rules); err != nil {
		return nil, err
	}
	if err := doc.buildHierarchy(*raw.Hierarchy); err != nil {
		return nil, err
	}
	if err := doc.buildContextual(raw.Contextual); err != nil {
		return nil, err
	}
	if err := doc.buildIdealMix(raw.IdealMix); err != nil {
		return nil, err
	}
	if raw.Currency != nil {
		if err := validateCurrency(*raw.Currency); err != nil {
			return nil, err
		}
		doc.Currency = *raw.Currency
	}

	return doc, nil
}

func (d *Document) buildGroups(groups ordered[rawGroup]) error {
	for _, e := range groups {
		id := strings.TrimSpace(e.Key)
		field := "groups." + e.Key
		if id == "" {
			return common.NewConfigError("groups", "group id must not be empty")
		}
		if _, dup := d.groups[id]; dup {
			return common.NewConfigError(field, "duplicate group id")
		}

		kind := model.GroupKind(strings.ToLower(e.Value.Kind))
		if !kind.Valid() {
			return common.NewConfigError(field+".kind", fmt.Sprintf("must be expense, income or mixed, got %q", e.Value.Kind))
		}

		tier := model.Tier(strings.ToLower(e.Value.Tier))
		switch tier {
		case model.TierNone:
		case model.TierEssential, model.TierBasic, model.TierDiscretionary:
			if kind != model.KindExpense {
				return common.NewConfigError(field+".tier", "only expense groups may declare a tier")
			}
		default:
			return common.NewConfigError(field+".tier", fmt.Sprintf("unknown tier %q", e.Value.Tier))
		}

		g := model.Group{
			ID:          id,
			Code:        e.Value.Code,
			Prefix:      e.Value.Prefix,
			DisplayName: e.Value.DisplayName,
			Description: e.Value.Description,
			Color:       e.Value.Color,
			Kind:        kind,
			Tier:        tier,
		}
		d.groups[id] = g
		d.groupOrder = append(d.groupOrder, id)
	}

	// Group prefixes must be pairwise non-overlapping.
	for i, a := range d.groupOrder {
		ga := d.groups[a]
		if !ga.HasPrefix() {
			continue
		}
		pa := common.Normalize(*ga.Prefix)
		for _, b := range d.groupOrder[i+1:] {
			gb := d.groups[b]
			if !gb.HasPrefix() {
				continue
			}
			pb := common.Normalize(*gb.Prefix)
			if strings.HasPrefix(pa, pb) || strings.HasPrefix(pb, pa) {
				return common.NewConfigError("groups."+b+".prefix",
					fmt.Sprintf("prefix %q overlaps %q of group %s", *gb.Prefix, *ga.Prefix, a))
			}
		}
	}

	return nil
}

func (d *Document) buildRules(rules []rawRule) error {
	for i, r := range rules {
		field := fmt.Sprintf("classification_rules[%d]", i)

		kind := RuleKind(strings.ToLower(strings.TrimSpace(r.Kind)))
		switch kind {
		case "":
			kind = RulePrefix
		case RulePrefix, RuleExact:
		default:
			return common.NewConfigError(field+".kind", fmt.Sprintf("unknown rule kind %q", r.Kind))
		}
		if r.Priority == nil {
			return common.NewConfigError(field+".priority", "required")
		}
		if len(r.Patterns) == 0 {
			return common.NewConfigError(field+".patterns", "rule has no patterns")
		}

		rule := Rule{Kind: kind, Priority: *r.Priority, Index: i}
		for j, p := range r.Patterns {
			pfield := fmt.Sprintf("%s.patterns[%d]", field, j)
			if common.Normalize(p.Prefix) == "" {
				return common.NewConfigError(pfield+".prefix", "must not be empty")
			}
			if _, ok := d.groups[p.GroupID]; !ok {
				return common.NewConfigError(pfield+".group_id", fmt.Sprintf("undefined group %q", p.GroupID))
			}
			rule.Patterns = append(rule.Patterns, Pattern{Prefix: p.Prefix, GroupID: p.GroupID})
		}
		d.rules = append(d.rules, rule)
	}
	return nil
}

func (d *Document) buildHierarchy(tree ordered[ordered[rawCategory]]) error {
	seen := make(map[string]string)
	for _, g := range tree {
		field := "category_hierarchy." + g.Key
		if _, ok := d.groups[g.Key]; !ok {
			return common.NewConfigError(field, "undefined group")
		}
		for _, c := range g.Value {
			name := strings.TrimSpace(c.Key)
			if name == "" {
				return common.NewConfigError(field, "category name must not be empty")
			}
			key := common.Normalize(name)
			if prev, dup := seen[key]; dup {
				return common.NewConfigError(field+"."+name, fmt.Sprintf("name collides with %q", prev))
			}
			seen[key] = name

			cat := Category{Name: name, GroupID: g.Key}
			for _, sub := range c.Value.Subcategories {
				sub = strings.TrimSpace(sub)
				skey := common.Normalize(sub)
				if skey == "" {
					return common.NewConfigError(field+"."+name+".subcategories", "subcategory must not be empty")
				}
				if prev, dup := seen[skey]; dup {
					return common.NewConfigError(field+"."+name+".subcategories", fmt.Sprintf("%q collides with %q", sub, prev))
				}
				seen[skey] = sub
				cat.Subcategories = append(cat.Subcategories, sub)
			}
			d.hierarchy[g.Key] = append(d.hierarchy[g.Key], cat)
		}
	}
	return nil
}

func (d *Document) buildContextual(ctx ordered[rawContextual]) error {
	for _, e := range ctx {
		field := "contextual_categories." + e.Key
		by := e.Value.ClassifyBy
		if by == "" {
			by = ClassifyByAmountSign
		}
		if by != ClassifyByAmountSign {
			return common.NewConfigError(field+".classify_by", fmt.Sprintf("unsupported value %q", by))
		}

		c := Contextual{Name: strings.TrimSpace(e.Key), ClassifyBy: by}
		targets := []struct {
			name string
			in   model.SignTarget
			out  *model.SignTarget
		}{
			{"if_positive", e.Value.IfPositive, &c.IfPositive},
			{"if_negative", e.Value.IfNegative, &c.IfNegative},
		}
		for _, t := range targets {
			g, ok := d.groups[t.in.GroupID]
			if !ok {
				return common.NewConfigError(field+"."+t.name+".group_id", fmt.Sprintf("undefined group %q", t.in.GroupID))
			}
			*t.out = model.SignTarget{GroupID: g.ID, Category: t.in.Category, Kind: g.Kind}
			if t.out.Category == "" {
				t.out.Category = c.Name
			}
		}
		d.contextual = append(d.contextual, c)
	}
	return nil
}

func (d *Document) buildIdealMix(mix map[string]float64) error {
	if len(mix) == 0 {
		d.idealMix = make(map[model.Tier]float64, len(DefaultIdealMix))
		for k, v := range DefaultIdealMix {
			d.idealMix[k] = v
		}
		return nil
	}

	d.idealMix = make(map[model.Tier]float64, len(mix))
	var total float64
	for k, v := range mix {
		tier := model.Tier(strings.ToLower(k))
		switch tier {
		case model.TierEssential, model.TierBasic, model.TierDiscretionary:
		default:
			return common.NewConfigError("ideal_mix."+k, "unknown tier")
		}
		if v < 0 || v > 100 {
			return common.NewConfigError("ideal_mix."+k, "must be between 0 and 100")
		}
		d.idealMix[tier] = v
		total += v
	}
	if math.Abs(total-100) > 0.01 {
		return common.NewConfigError("ideal_mix", fmt.Sprintf("targets must sum to 100, got %.2f", total))
	}
	return nil
}

func validateCurrency(c CurrencyFormat) error {
	if c.DecimalPlaces < 0 || c.DecimalPlaces > 6 {
		return common.NewConfigError("currency_format.decimal_places", "must be between 0 and 6")
	}
	switch c.SymbolPosition {
	case "before", "after":
	default:
		return common.NewConfigError("currency_format.symbol_position", fmt.Sprintf("must be before or after, got %q", c.SymbolPosition))
	}
	if c.DecimalSep == "" {
		return common.NewConfigError("currency_format.decimal_sep", "must not be empty")
	}
	if c.ThousandsSep == c.DecimalSep {
		return common.NewConfigError("currency_format.thousands_sep", "must differ from decimal_sep")
	}
	return nil
}
