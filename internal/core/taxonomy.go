package core

import "sort"

// Taxonomy is the fixed category registry: one ordered label list per kind.
// It is defined once at process start and has no mutation API. Imported
// transactions may carry labels outside the registry; membership is only
// enforced when a transaction is created or edited.
type Taxonomy struct {
	income  []string
	expense []string
}

// DefaultTaxonomy returns the built-in registry.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		income: []string{
			"Lương",
			"Thưởng",
			"Đầu tư",
			"Kinh doanh",
			"Khác",
		},
		expense: []string{
			"Ăn uống",
			"Di chuyển",
			"Nhà ở",
			"Mua sắm",
			"Giải trí",
			"Y tế",
			"Giáo dục",
			"Tiện ích",
			"Khác",
		},
	}
}

// NewTaxonomy builds a registry from explicit label lists, preserving order
// and dropping duplicates and blanks.
func NewTaxonomy(income, expense []string) *Taxonomy {
	return &Taxonomy{
		income:  dedupe(income),
		expense: dedupe(expense),
	}
}

// CategoriesFor returns the ordered labels for one kind.
func (t *Taxonomy) CategoriesFor(k Kind) []string {
	switch k {
	case Income:
		return append([]string(nil), t.income...)
	case Expense:
		return append([]string(nil), t.expense...)
	default:
		return nil
	}
}

// AllCategories returns every label across both kinds, income first,
// deduplicated but otherwise in registry order. Used to populate the
// "all categories" filter.
func (t *Taxonomy) AllCategories() []string {
	return dedupe(append(append([]string(nil), t.income...), t.expense...))
}

// Contains reports whether label is a registered category for kind.
func (t *Taxonomy) Contains(k Kind, label string) bool {
	var labels []string
	switch k {
	case Income:
		labels = t.income
	case Expense:
		labels = t.expense
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// chartPalette is the fixed color cycle for the expense breakdown widget.
var chartPalette = []string{
	"#FF6384",
	"#36A2EB",
	"#FFCE56",
	"#4BC0C0",
	"#9966FF",
	"#FF9F40",
	"#FF6384",
	"#C9CBCF",
	"#4BC0C0",
}

// ColorAssignment pairs each category label with a palette color. Assignment
// is stable: labels are ordered lexicographically before colors are dealt
// out, so the same label set always yields the same colors regardless of the
// order the labels arrive in. The palette cycles when labels outnumber it.
func ColorAssignment(labels []string) map[string]string {
	ordered := append([]string(nil), labels...)
	sort.Strings(ordered)
	colors := make(map[string]string, len(ordered))
	for i, label := range ordered {
		if _, ok := colors[label]; ok {
			continue
		}
		colors[label] = chartPalette[i%len(chartPalette)]
	}
	return colors
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
