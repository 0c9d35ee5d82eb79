// Package classification resolves category names to hierarchy groups using
// an index compiled once per hierarchy document.
package classification

import (
	"strings"

	"github.com/armon/go-radix"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/hierarchy"
	"github.com/Veraticus/spice-ledger/internal/model"
)

// candidate is a compiled rule pattern.
type candidate struct {
	ref model.RuleRef
}

// placement is where a hierarchy name sits in the category tree.
type placement struct {
	groupID     string
	primary     string
	subcategory string
}

type contextualEntry struct {
	key  string
	name string
	rule model.SignRule
}

// Index is the compiled lookup structure for one hierarchy document.
// It is immutable and safe for concurrent use.
type Index struct {
	doc        *hierarchy.Document
	groups     map[string]model.Group
	prefixes   *radix.Tree
	exact      map[string]candidate
	placements map[string]placement
	contextual []contextualEntry
	patterns   int
}

// BuildIndex compiles the rules, category tree and contextual categories of
// doc. Patterns are inserted in ascending priority, ties in declaration
// order, and the first pattern claiming a normalized prefix keeps it.
func BuildIndex(doc *hierarchy.Document) *Index {
	ix := &Index{
		doc:        doc,
		groups:     make(map[string]model.Group),
		prefixes:   radix.New(),
		exact:      make(map[string]candidate),
		placements: make(map[string]placement),
	}

	for _, g := range doc.Groups() {
		ix.groups[g.ID] = g
	}

	for _, rule := range doc.Rules() {
		for j, p := range rule.Patterns {
			key := common.Normalize(p.Prefix)
			c := candidate{ref: model.RuleRef{
				Prefix:   p.Prefix,
				GroupID:  p.GroupID,
				Priority: rule.Priority,
				Rule:     rule.Index,
				Pattern:  j,
			}}
			ix.patterns++

			if rule.Kind == hierarchy.RuleExact {
				if _, taken := ix.exact[key]; !taken {
					ix.exact[key] = c
				}
				continue
			}

			if key == "" {
				continue
			}
			if _, taken := ix.prefixes.Get(key); !taken {
				ix.prefixes.Insert(key, c)
			}
		}
	}

	for _, groupID := range doc.AllGroupIDs() {
		for _, cat := range doc.Categories(groupID) {
			ix.placements[common.Normalize(cat.Name)] = placement{groupID: groupID, primary: cat.Name}
			for _, sub := range cat.Subcategories {
				ix.placements[common.Normalize(sub)] = placement{groupID: groupID, primary: cat.Name, subcategory: sub}
			}
		}
	}

	for _, c := range doc.Contextual() {
		ix.contextual = append(ix.contextual, contextualEntry{
			key:  common.Normalize(c.Name),
			name: c.Name,
			rule: model.SignRule{Positive: c.IfPositive, Negative: c.IfNegative},
		})
	}

	return ix
}

// Document returns the hierarchy the index was built from.
func (ix *Index) Document() *hierarchy.Document {
	return ix.doc
}

// PatternCount returns the number of compiled rule patterns.
func (ix *Index) PatternCount() int {
	return ix.patterns
}

// longestPrefix returns the pattern with the longest normalized prefix
// of key.
func (ix *Index) longestPrefix(key string) *candidate {
	_, v, ok := ix.prefixes.LongestPrefix(key)
	if !ok {
		return nil
	}
	c := v.(candidate)
	return &c
}

// contextualFor returns the contextual entry matching key, either exactly or
// in its "<name> - <sub>" form, and the subcategory part.
func (ix *Index) contextualFor(key, raw string) (*contextualEntry, string) {
	for i := range ix.contextual {
		e := &ix.contextual[i]
		if key == e.key {
			return e, ""
		}
		if strings.HasPrefix(key, e.key+" -") {
			sub := ""
			if _, after, ok := strings.Cut(raw, " - "); ok {
				sub = strings.TrimSpace(after)
			}
			return e, sub
		}
	}
	return nil, ""
}
