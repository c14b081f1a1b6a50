package core

import "sort"

// Summary holds the derived aggregate figures for a transaction set.
// Totals are non-negative sums per kind; the balance may be negative.
type Summary struct {
	TotalIncome  Money `json:"totalIncome"`
	TotalExpense Money `json:"totalExpense"`
	Balance      Money `json:"balance"`
}

// CategoryAmount is one slice of the expense breakdown, paired with its
// stable chart color.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
	Color  string `json:"color"`
}

// Summarize computes total income, total expense, and balance over the
// transaction set. Sums over zero transactions of a kind yield 0; all
// accumulation happens in integer cents.
func Summarize(ts []Transaction) Summary {
	var income, expense int64
	for _, t := range ts {
		switch t.Kind {
		case Income:
			income += t.Amount.Cents
		case Expense:
			expense += t.Amount.Cents
		}
	}
	return Summary{
		TotalIncome:  Money{Cents: income},
		TotalExpense: Money{Cents: expense},
		Balance:      Money{Cents: income - expense},
	}
}

// BreakdownByCategory sums expense amounts per category label. Categories
// with no expense transactions are absent from the map; iteration order is
// unspecified.
func BreakdownByCategory(ts []Transaction) map[string]Money {
	sums := make(map[string]Money)
	for _, t := range ts {
		if t.Kind != Expense {
			continue
		}
		sums[t.Category] = Money{Cents: sums[t.Category].Cents + t.Amount.Cents}
	}
	return sums
}

// ChartBreakdown turns the category breakdown into renderable slices with
// stable color assignment, ordered by descending amount (name breaks ties).
func ChartBreakdown(ts []Transaction) []CategoryAmount {
	sums := BreakdownByCategory(ts)
	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	colors := ColorAssignment(labels)

	out := make([]CategoryAmount, 0, len(sums))
	for label, amount := range sums {
		out = append(out, CategoryAmount{Name: label, Amount: amount, Color: colors[label]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
