package model

// MatchSource indicates how a category name was classified.
type MatchSource string

// Match source constants.
const (
	SourceNone       MatchSource = "none"
	SourceHierarchy  MatchSource = "hierarchy"
	SourceContextual MatchSource = "contextual"
	SourcePrefix     MatchSource = "prefix"
)

// RuleRef identifies the rule pattern that classified a name.
type RuleRef struct {
	Prefix   string `json:"prefix"`
	GroupID  string `json:"group_id"`
	Priority int    `json:"priority"`
	Rule     int    `json:"rule"`
	Pattern  int    `json:"pattern"`
}

// SignTarget is where a mixed category lands for one sign of its amount.
type SignTarget struct {
	GroupID  string    `json:"group_id" yaml:"group_id"`
	Category string    `json:"category,omitempty" yaml:"category"`
	Kind     GroupKind `json:"-" yaml:"-"`
}

// SignRule routes a mixed category by the sign of each amount.
// Zero amounts follow Negative.
type SignRule struct {
	Positive SignTarget
	Negative SignTarget
}

// Classification is the result of classifying one category name.
// GroupID is empty for unclassified names and for mixed categories that
// only resolve once an amount is known.
type Classification struct {
	MatchedRule     *RuleRef
	BySign          *SignRule
	GroupID         string
	PrimaryCategory string
	Subcategory     string
	Kind            GroupKind
	Source          MatchSource
}

// Unclassified reports whether nothing matched the name.
func (c Classification) Unclassified() bool {
	return c.Kind == KindUnclassified
}
