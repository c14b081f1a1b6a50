package ledger

import (
	"context"
	"errors"

	"soquy/internal/core"
)

// SeedIfEmpty inserts a small set of demo transactions when the store is
// empty, so a fresh instance has something to show. Creation order is
// oldest-first; the newest sample ends up at the head of the collection.
func (l *Ledger) SeedIfEmpty(ctx context.Context) error {
	if len(l.All()) > 0 {
		return nil
	}

	samples := []struct {
		kind  core.Kind
		draft Draft
	}{
		{core.Income, Draft{Description: "Lương tháng 12", Amount: core.Money{Cents: 1500000000}, Category: "Lương", Date: core.NewDate(2024, 12, 1)}},
		{core.Expense, Draft{Description: "Mua sắm cuối tuần", Amount: core.Money{Cents: 50000000}, Category: "Mua sắm", Date: core.NewDate(2024, 12, 2)}},
		{core.Expense, Draft{Description: "Ăn trưa", Amount: core.Money{Cents: 15000000}, Category: "Ăn uống", Date: core.NewDate(2024, 12, 3)}},
		{core.Income, Draft{Description: "Thưởng dự án", Amount: core.Money{Cents: 200000000}, Category: "Thưởng", Date: core.NewDate(2024, 12, 4)}},
	}

	for _, s := range samples {
		if _, err := l.Create(ctx, s.kind, s.draft); err != nil && !errors.Is(err, ErrPersist) {
			return err
		}
	}
	return nil
}
