// Package model defines the core data structures for the ledger application.
package model

// GroupKind indicates whether a group holds expenses, income, or both.
type GroupKind string

const (
	// KindExpense represents groups of outgoing money.
	KindExpense GroupKind = "expense"
	// KindIncome represents groups of incoming money.
	KindIncome GroupKind = "income"
	// KindMixed represents groups whose direction depends on each amount's sign.
	KindMixed GroupKind = "mixed"
	// KindUnclassified marks a category that matched nothing in the hierarchy.
	KindUnclassified GroupKind = "unclassified"
)

// Valid reports whether k is a kind a configured group may declare.
func (k GroupKind) Valid() bool {
	switch k {
	case KindExpense, KindIncome, KindMixed:
		return true
	}
	return false
}

// Tier is the discretion level of an expense group, used for the target
// spending mix (50/30/20 style).
type Tier string

const (
	// TierEssential is the lowest-discretion tier (housing, food, health).
	TierEssential Tier = "essential"
	// TierBasic covers regular but adjustable spending.
	TierBasic Tier = "basic"
	// TierDiscretionary covers wants and extras.
	TierDiscretionary Tier = "discretionary"
	// TierNone is used by groups outside the mix (income, mixed).
	TierNone Tier = ""
)

// UnclassifiedGroup is the bucket key used for records without a group.
const UnclassifiedGroup = "unclassified"

// Group is a configured top level of the category hierarchy.
type Group struct {
	Prefix      *string
	ID          string
	Code        string
	DisplayName string
	Description string
	Color       string
	Kind        GroupKind
	Tier        Tier
}

// HasPrefix reports whether the group declares a name prefix.
func (g Group) HasPrefix() bool {
	return g.Prefix != nil && *g.Prefix != ""
}

// Label returns the display name, falling back to the id.
func (g Group) Label() string {
	if g.DisplayName != "" {
		return g.DisplayName
	}
	return g.ID
}
