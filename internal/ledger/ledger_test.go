package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"soquy/internal/codec"
	"soquy/internal/core"
	"soquy/internal/store"
)

func openEmpty(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), store.NewMemory(nil), nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return l
}

func mustCreate(t *testing.T, l *Ledger, kind core.Kind, desc string, cents int64, category, date string) core.Transaction {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	tx, err := l.Create(context.Background(), kind, Draft{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Date:        d,
	})
	if err != nil {
		t.Fatalf("create %q: %v", desc, err)
	}
	return tx
}

func TestCreateAssignsDistinctIDsWithinOneTick(t *testing.T) {
	l := openEmpty(t)
	seen := map[int64]bool{}
	// Two creations in the same timer tick must still differ; hammer a few
	// to make collisions impossible to miss.
	for i := 0; i < 50; i++ {
		tx := mustCreate(t, l, core.Income, fmt.Sprintf("tx %d", i), 100, "Lương", "2024-12-01")
		if seen[tx.ID] {
			t.Fatalf("duplicate id %d", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestCreatePrepends(t *testing.T) {
	l := openEmpty(t)
	first := mustCreate(t, l, core.Income, "Salary", 1500000000, "Lương", "2024-12-01")
	second := mustCreate(t, l, core.Expense, "Lunch", 15000000, "Ăn uống", "2024-12-03")

	all := l.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(all))
	}
	if all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("newest must be at the head: %v", []int64{all[0].ID, all[1].ID})
	}
	if all[0].CreatedAt.IsZero() {
		t.Fatalf("createdAt must be set")
	}
	if all[0].UpdatedAt != nil {
		t.Fatalf("updatedAt must be absent before the first edit")
	}
}

func TestCreateValidation(t *testing.T) {
	l := openEmpty(t)
	date := core.NewDate(2024, 1, 1)

	cases := []struct {
		name  string
		kind  core.Kind
		draft Draft
		want  error
	}{
		{"empty description", core.Expense, Draft{Description: "", Amount: core.Money{Cents: 10000}, Category: "Ăn uống", Date: date}, core.ErrEmptyDescription},
		{"whitespace description", core.Expense, Draft{Description: "   ", Amount: core.Money{Cents: 10000}, Category: "Ăn uống", Date: date}, core.ErrEmptyDescription},
		{"zero amount", core.Expense, Draft{Description: "desc", Amount: core.Money{}, Category: "Ăn uống", Date: date}, core.ErrInvalidAmount},
		{"unknown category", core.Expense, Draft{Description: "desc", Amount: core.Money{Cents: 5000}, Category: "NotARealCategory", Date: date}, core.ErrUnknownCategory},
		{"category of the other kind", core.Expense, Draft{Description: "desc", Amount: core.Money{Cents: 5000}, Category: "Lương", Date: date}, core.ErrUnknownCategory},
		{"zero date", core.Expense, Draft{Description: "desc", Amount: core.Money{Cents: 5000}, Category: "Ăn uống", Date: core.Date{}}, core.ErrInvalidDate},
		{"bad kind", "transfer", Draft{Description: "desc", Amount: core.Money{Cents: 5000}, Category: "Ăn uống", Date: date}, core.ErrInvalidKind},
	}
	for _, tc := range cases {
		if _, err := l.Create(context.Background(), tc.kind, tc.draft); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
		if len(l.All()) != 0 {
			t.Fatalf("%s: failed create must not mutate the store", tc.name)
		}
	}
}

func TestUpdate(t *testing.T) {
	l := openEmpty(t)
	older := mustCreate(t, l, core.Expense, "Lunch", 15000000, "Ăn uống", "2024-12-03")
	newer := mustCreate(t, l, core.Expense, "Taxi", 8000000, "Di chuyển", "2024-12-04")

	date, _ := core.ParseDate("2024-12-05")
	updated, err := l.Update(context.Background(), older.ID, Draft{
		Description: "Team lunch",
		Amount:      core.Money{Cents: 30000000},
		Category:    "Ăn uống",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.ID != older.ID || updated.Kind != older.Kind {
		t.Fatalf("id and kind must be preserved: %+v", updated)
	}
	if !updated.CreatedAt.Equal(older.CreatedAt) {
		t.Fatalf("createdAt must be preserved")
	}
	if updated.UpdatedAt == nil {
		t.Fatalf("updatedAt must be set on edit")
	}
	if updated.Description != "Team lunch" || updated.Amount.Cents != 30000000 {
		t.Fatalf("mutable fields not replaced: %+v", updated)
	}

	// Position in the collection is unchanged: edited entry stays second
	all := l.All()
	if all[0].ID != newer.ID || all[1].ID != older.ID {
		t.Fatalf("edit must not move the transaction: %v", []int64{all[0].ID, all[1].ID})
	}
}

func TestUpdateAbsentID(t *testing.T) {
	l := openEmpty(t)
	mustCreate(t, l, core.Income, "Salary", 100, "Lương", "2024-12-01")

	date, _ := core.ParseDate("2024-12-05")
	_, err := l.Update(context.Background(), 999999, Draft{
		Description: "ghost",
		Amount:      core.Money{Cents: 100},
		Category:    "Lương",
		Date:        date,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(l.All()) != 1 {
		t.Fatalf("store must be unchanged")
	}
}

func TestUpdateCategoryCheckedAgainstExistingKind(t *testing.T) {
	l := openEmpty(t)
	tx := mustCreate(t, l, core.Income, "Salary", 100, "Lương", "2024-12-01")

	date, _ := core.ParseDate("2024-12-02")
	_, err := l.Update(context.Background(), tx.ID, Draft{
		Description: "Salary",
		Amount:      core.Money{Cents: 100},
		Category:    "Ăn uống", // expense-only label
		Date:        date,
	})
	if !errors.Is(err, core.ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	l := openEmpty(t)
	tx := mustCreate(t, l, core.Expense, "Lunch", 100, "Ăn uống", "2024-12-03")

	removed, err := l.Delete(context.Background(), tx.ID)
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	if len(l.All()) != 0 {
		t.Fatalf("store must be empty after delete")
	}

	removed, err = l.Delete(context.Background(), 999999)
	if err != nil || removed {
		t.Fatalf("absent id: expected false, nil; got %v, %v", removed, err)
	}
}

func TestWriteThroughPersistence(t *testing.T) {
	mem := store.NewMemory(nil)
	l, err := Open(context.Background(), mem, nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	tx := mustCreate(t, l, core.Income, "Salary", 100, "Lương", "2024-12-01")

	// Every mutation writes through; a fresh ledger over the same store
	// sees the data
	l2, err := Open(context.Background(), mem, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	all := l2.All()
	if len(all) != 1 || all[0].ID != tx.ID {
		t.Fatalf("persisted state mismatch: %+v", all)
	}

	// The id allocator reseeds above persisted ids
	tx2 := mustCreate(t, l2, core.Income, "Bonus", 100, "Thưởng", "2024-12-02")
	if tx2.ID <= tx.ID {
		t.Fatalf("reseeded id %d must exceed %d", tx2.ID, tx.ID)
	}
}

func TestOpenMalformedSnapshotStartsEmpty(t *testing.T) {
	mem := store.NewMemory([]byte("not json at all"))
	l, err := Open(context.Background(), mem, nil, nil)
	if err != nil {
		t.Fatalf("malformed snapshot must not fail startup: %v", err)
	}
	if len(l.All()) != 0 {
		t.Fatalf("expected empty ledger")
	}
}

// failingStore accepts loads but refuses writes.
type failingStore struct{}

func (failingStore) Load(context.Context) ([]byte, error) { return nil, nil }
func (failingStore) Save(context.Context, []byte) error   { return errors.New("disk full") }

func TestPersistFailureKeepsSessionState(t *testing.T) {
	l, err := Open(context.Background(), failingStore{}, nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	date, _ := core.ParseDate("2024-12-01")
	tx, err := l.Create(context.Background(), core.Income, Draft{
		Description: "Salary",
		Amount:      core.Money{Cents: 100},
		Category:    "Lương",
		Date:        date,
	})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if tx.ID == 0 {
		t.Fatalf("transaction must still be created for the session")
	}
	if len(l.All()) != 1 {
		t.Fatalf("in-memory state remains the source of truth")
	}
}

func TestReplaceAllAtomic(t *testing.T) {
	l := openEmpty(t)
	existing := mustCreate(t, l, core.Income, "Salary", 100, "Lương", "2024-12-01")

	bad := []byte(`[
	  {"id":10,"type":"income","description":"a","amount":10,"category":"Lương","date":"2024-01-01","createdAt":"2024-01-01T00:00:00Z"},
	  {"id":11,"type":"expense","description":"b","amount":"oops","category":"Ăn uống","date":"2024-01-02","createdAt":"2024-01-02T00:00:00Z"}
	]`)
	if _, err := l.ReplaceAll(context.Background(), bad); !errors.Is(err, codec.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
	all := l.All()
	if len(all) != 1 || all[0].ID != existing.ID {
		t.Fatalf("failed import must leave prior state intact: %+v", all)
	}
}

func TestReplaceAllImportsAndReseeds(t *testing.T) {
	l := openEmpty(t)
	mustCreate(t, l, core.Income, "Old", 100, "Lương", "2024-12-01")

	payload := []byte(`[
	  {"id":41,"type":"expense","description":"b","amount":20,"category":"RetiredCategory","date":"2024-01-02","createdAt":"2024-01-02T00:00:00Z"},
	  {"id":40,"type":"income","description":"a","amount":10,"category":"Lương","date":"2024-01-01","createdAt":"2024-01-01T00:00:00Z"}
	]`)
	count, err := l.ReplaceAll(context.Background(), payload)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 imported, got %d", count)
	}

	// Import preserves payload order and trusts historical categories
	all := l.All()
	if all[0].ID != 41 || all[1].ID != 40 {
		t.Fatalf("import order mangled: %v", []int64{all[0].ID, all[1].ID})
	}
	if all[0].Category != "RetiredCategory" {
		t.Fatalf("imported category must be trusted: %q", all[0].Category)
	}

	// New ids start above the imported maximum
	tx := mustCreate(t, l, core.Income, "New", 100, "Lương", "2024-12-05")
	if tx.ID <= 41 {
		t.Fatalf("id %d must exceed imported max 41", tx.ID)
	}
}

func TestEndToEndScenario(t *testing.T) {
	l := openEmpty(t)

	mustCreate(t, l, core.Income, "Salary", 1500000000, "Lương", "2024-12-01")
	lunch := mustCreate(t, l, core.Expense, "Lunch", 15000000, "Ăn uống", "2024-12-03")

	s := l.Summary()
	if s.TotalIncome.Cents != 1500000000 || s.TotalExpense.Cents != 15000000 || s.Balance.Cents != 1485000000 {
		t.Fatalf("unexpected summary: %+v", s)
	}

	got := l.Filter(core.Filter{Kind: "expense", Category: core.FilterAll})
	if len(got) != 1 || got[0].ID != lunch.ID {
		t.Fatalf("expected exactly the lunch transaction, got %+v", got)
	}

	breakdown := l.Breakdown()
	if len(breakdown) != 1 || breakdown["Ăn uống"].Cents != 15000000 {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}
}

func TestExportRoundTrip(t *testing.T) {
	l := openEmpty(t)
	mustCreate(t, l, core.Income, "Salary", 1500000000, "Lương", "2024-12-01")
	mustCreate(t, l, core.Expense, "Lunch", 15000000, "Ăn uống", "2024-12-03")

	data, err := l.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	l2 := openEmpty(t)
	if _, err := l2.ReplaceAll(context.Background(), data); err != nil {
		t.Fatalf("import of exported payload: %v", err)
	}

	before, after := l.All(), l2.All()
	if len(before) != len(after) {
		t.Fatalf("length mismatch: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID ||
			before[i].Kind != after[i].Kind ||
			before[i].Amount != after[i].Amount ||
			before[i].Category != after[i].Category ||
			before[i].Date.String() != after[i].Date.String() {
			t.Fatalf("record %d mismatch:\n%+v\n%+v", i, before[i], after[i])
		}
	}
}

func TestSeedIfEmpty(t *testing.T) {
	l := openEmpty(t)
	if err := l.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(l.All()) != 4 {
		t.Fatalf("expected 4 demo transactions, got %d", len(l.All()))
	}

	// Seeding a non-empty ledger is a no-op
	if err := l.SeedIfEmpty(context.Background()); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if len(l.All()) != 4 {
		t.Fatalf("seed must not duplicate data")
	}

	s := l.Summary()
	if s.Balance.Cents != s.TotalIncome.Cents-s.TotalExpense.Cents {
		t.Fatalf("summary identity violated: %+v", s)
	}
}
