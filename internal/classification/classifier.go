package classification

import (
	"strings"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// Classify resolves a category name. Lookup order is the category tree,
// exact rules, contextual categories, then the longest matching prefix.
// Names that match nothing are unclassified, which is not an error.
func (ix *Index) Classify(name string) model.Classification {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return unclassified(trimmed)
	}
	key := common.Normalize(trimmed)

	if p, ok := ix.placements[key]; ok {
		return model.Classification{
			GroupID:         p.groupID,
			PrimaryCategory: p.primary,
			Subcategory:     p.subcategory,
			Kind:            ix.groups[p.groupID].Kind,
			Source:          model.SourceHierarchy,
			MatchedRule:     ix.ruleFor(key),
		}
	}

	if c, ok := ix.exact[key]; ok {
		ref := c.ref
		return model.Classification{
			GroupID:         ref.GroupID,
			PrimaryCategory: trimmed,
			Kind:            ix.groups[ref.GroupID].Kind,
			Source:          model.SourcePrefix,
			MatchedRule:     &ref,
		}
	}

	if e, sub := ix.contextualFor(key, trimmed); e != nil {
		rule := e.rule
		return model.Classification{
			PrimaryCategory: e.name,
			Subcategory:     sub,
			Kind:            model.KindMixed,
			Source:          model.SourceContextual,
			BySign:          &rule,
		}
	}

	if c := ix.longestPrefix(key); c != nil {
		ref := c.ref
		return model.Classification{
			GroupID:         ref.GroupID,
			PrimaryCategory: trimmed,
			Kind:            ix.groups[ref.GroupID].Kind,
			Source:          model.SourcePrefix,
			MatchedRule:     &ref,
		}
	}

	return unclassified(trimmed)
}

// ruleFor returns the rule that would match key, if any. Hierarchy entries
// keep it for reporting; it never changes their group.
func (ix *Index) ruleFor(key string) *model.RuleRef {
	if c, ok := ix.exact[key]; ok {
		ref := c.ref
		return &ref
	}
	if c := ix.longestPrefix(key); c != nil {
		ref := c.ref
		return &ref
	}
	return nil
}

func unclassified(name string) model.Classification {
	return model.Classification{
		PrimaryCategory: name,
		Kind:            model.KindUnclassified,
		Source:          model.SourceNone,
	}
}

// Assemble joins a record with the classification of its category. Mixed
// classifications resolve against this record's amount sign: positive is
// income, zero and negative are expense. Kind is never left mixed. The result is never cached per
// name because one category can carry both signs across periods.
func (ix *Index) Assemble(rec model.LongRecord, c model.Classification) model.ClassifiedRecord {
	out := model.ClassifiedRecord{
		LongRecord:      rec,
		GroupID:         c.GroupID,
		PrimaryCategory: c.PrimaryCategory,
		Subcategory:     c.Subcategory,
		Kind:            c.Kind,
		Source:          c.Source,
		MatchedRule:     c.MatchedRule,
	}

	if c.Kind == model.KindMixed {
		out.Mixed = true
		if c.BySign != nil {
			target := c.BySign.Negative
			if rec.Amount.IsPositive() {
				target = c.BySign.Positive
			}
			out.GroupID = target.GroupID
			out.Kind = target.Kind
			if target.Category != "" {
				out.PrimaryCategory = target.Category
			}
		}
		// A sign target may itself point at a mixed group.
		if out.Kind == model.KindMixed {
			out.Kind = model.KindExpense
			if rec.Amount.IsPositive() {
				out.Kind = model.KindIncome
			}
		}
	}

	if g, ok := ix.groups[out.GroupID]; ok {
		out.GroupName = g.Label()
		if out.Kind == model.KindExpense {
			out.Tier = g.Tier
		}
	}
	if out.GroupID == "" {
		out.GroupName = model.UnclassifiedGroup
	}
	return out
}
