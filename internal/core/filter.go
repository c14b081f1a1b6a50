package core

// FilterAll is the wildcard value for both filter dimensions.
const FilterAll = "all"

// Filter selects transactions for display. Zero or "all" values match
// everything on that dimension; both dimensions apply as a conjunction.
type Filter struct {
	Kind     string // "all", "income" or "expense"
	Category string // "all" or an exact category label
}

// Match reports whether the transaction passes both filter dimensions.
func (f Filter) Match(t Transaction) bool {
	if f.Kind != "" && f.Kind != FilterAll && string(t.Kind) != f.Kind {
		return false
	}
	if f.Category != "" && f.Category != FilterAll && t.Category != f.Category {
		return false
	}
	return true
}

// Apply returns the transactions matching the filter, preserving input
// order. It never re-sorts; an empty result is a valid state, not an error.
func Apply(ts []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(ts))
	for _, t := range ts {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
