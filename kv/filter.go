package kv

// Filter combinators.
const (
	CombineAnd = "AND"
	CombineOr  = "OR"
)

// Sort strategies for FilterOrder.
const (
	StrategyAsc  = "ASC"
	StrategyDesc = "DESC"
)

// FilterRequest is the wire format of the composite filter evaluator. The
// Redis implementation serializes it to JSON and passes it as the single
// script argument; the memory implementation evaluates it directly.
//
// Prefix is the entity key namespace ("name:"). The evaluator resolves
// orderBy and score conditions against "<prefix>sort:<field>" and equality
// conditions against "<prefix>index:<field>:<value>".
type FilterRequest struct {
	// OrderBy seeds the running id set from a score range over a sortable
	// structure, ascending or descending. The seed order is preserved in
	// the result. Optional.
	OrderBy *FilterOrder `json:"orderBy,omitempty"`

	// Scores are range conditions over sortable structures.
	Scores []ScoreCondition `json:"scores"`

	// Equals are exact-match conditions over index structures.
	Equals []EqualsCondition `json:"equals"`

	// Type combines condition results: CombineAnd intersects, CombineOr
	// unions. A result combined into an empty running set replaces it, so
	// the first contributing condition acts as the seed.
	Type string `json:"type"`

	// Limit caps the returned slice; -1 means unlimited.
	Limit int `json:"limit"`

	// Offset skips leading ids before the limit applies.
	Offset int `json:"offset"`

	// Prefix is the entity key namespace, e.g. "user:".
	Prefix string `json:"prefix"`
}

// FilterOrder is the ordering seed of a FilterRequest.
type FilterOrder struct {
	Name     string  `json:"name"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Strategy string  `json:"strategy"`
}

// ScoreCondition is a numeric range condition over a sortable structure.
type ScoreCondition struct {
	Key string  `json:"key"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EqualsCondition is an exact-match condition over an index structure.
type EqualsCondition struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// normalized returns a copy safe to evaluate: nil condition slices become
// empty so the store-side decoder sees arrays, not nulls, and a negative
// offset clamps to zero so both evaluator implementations slice alike.
func (r FilterRequest) normalized() FilterRequest {
	if r.Scores == nil {
		r.Scores = []ScoreCondition{}
	}
	if r.Equals == nil {
		r.Equals = []EqualsCondition{}
	}
	if r.Type == "" {
		r.Type = CombineAnd
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return r
}
