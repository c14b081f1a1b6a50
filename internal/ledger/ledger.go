// Package ledger owns the transaction collection and every operation over
// it: create, update, delete, query, aggregation, and wholesale import. It
// is the sole owner of transaction state; persistence is written through
// after each mutation and change events are published best-effort.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"soquy/internal/amqp"
	"soquy/internal/codec"
	"soquy/internal/core"
	"soquy/internal/store"
)

var (
	// ErrNotFound is returned by Update when no transaction has the given
	// id. The store is left unchanged.
	ErrNotFound = errors.New("transaction not found")

	// ErrPersist marks a snapshot write failure after a mutation already
	// took effect in memory. The operation's result is still valid for the
	// session; callers should surface the warning since the data will not
	// survive a restart.
	ErrPersist = errors.New("snapshot write failed")
)

// Draft carries the user-editable fields of a transaction. Kind is supplied
// separately on create and is immutable on update.
type Draft struct {
	Description string
	Amount      core.Money
	Category    string
	Date        core.Date
}

// Ledger is constructed once at startup from the persisted snapshot and
// passed by handle to the presentation layer. The mutex keeps concurrent
// HTTP requests from interleaving mutations; each operation runs to
// completion as one atomic step.
type Ledger struct {
	mu     sync.Mutex
	store  store.Store
	events *amqp.Client // optional, nil when AMQP is not configured
	tax    *core.Taxonomy

	txs    []core.Transaction
	nextID int64
}

// Open loads the persisted snapshot and builds a ready Ledger. A missing
// snapshot starts empty; a malformed one is logged and also starts empty
// rather than failing startup.
func Open(ctx context.Context, st store.Store, tax *core.Taxonomy, events *amqp.Client) (*Ledger, error) {
	if tax == nil {
		tax = core.DefaultTaxonomy()
	}

	data, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var txs []core.Transaction
	if len(data) > 0 {
		txs, err = codec.Decode(data)
		if err != nil {
			slog.WarnContext(ctx, "Persisted snapshot is malformed, starting empty", "error", err)
			txs = nil
		}
	}

	l := &Ledger{
		store:  st,
		events: events,
		tax:    tax,
		txs:    txs,
		nextID: maxID(txs) + 1,
	}

	slog.InfoContext(ctx, "Ledger opened", "transactions", len(txs))
	return l, nil
}

func maxID(txs []core.Transaction) int64 {
	var max int64
	for _, t := range txs {
		if t.ID > max {
			max = t.ID
		}
	}
	return max
}

// Taxonomy returns the category registry.
func (l *Ledger) Taxonomy() *core.Taxonomy {
	return l.tax
}

// Create validates the draft, assigns a fresh id, and prepends the new
// transaction so the collection stays most-recent-first. The returned
// transaction is valid even when the error wraps ErrPersist.
func (l *Ledger) Create(ctx context.Context, kind core.Kind, d Draft) (core.Transaction, error) {
	if err := l.validateDraft(kind, d); err != nil {
		return core.Transaction{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := core.Transaction{
		ID:          l.nextID,
		Kind:        kind,
		Description: strings.TrimSpace(d.Description),
		Amount:      d.Amount,
		Category:    d.Category,
		Date:        d.Date,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	next := make([]core.Transaction, 0, len(l.txs)+1)
	next = append(next, tx)
	next = append(next, l.txs...)

	err := l.commitLocked(ctx, next)
	if err != nil && !errors.Is(err, ErrPersist) {
		return core.Transaction{}, err
	}

	l.nextID++
	l.publish(ctx, amqp.NewChangeMessage(amqp.ActionCreated, tx.ID))
	return tx, err
}

// Update replaces the mutable fields of the transaction with the given id.
// Kind, id, createdAt, and the position in the collection are preserved;
// updatedAt is set. Category membership is checked against the existing
// kind.
func (l *Ledger) Update(ctx context.Context, id int64, d Draft) (core.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, t := range l.txs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Transaction{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err := l.validateDraft(l.txs[idx].Kind, d); err != nil {
		return core.Transaction{}, err
	}

	updated := l.txs[idx]
	updated.Description = strings.TrimSpace(d.Description)
	updated.Amount = d.Amount
	updated.Category = d.Category
	updated.Date = d.Date
	now := time.Now().UTC().Truncate(time.Second)
	updated.UpdatedAt = &now

	next := append([]core.Transaction(nil), l.txs...)
	next[idx] = updated

	err := l.commitLocked(ctx, next)
	if err != nil && !errors.Is(err, ErrPersist) {
		return core.Transaction{}, err
	}

	l.publish(ctx, amqp.NewChangeMessage(amqp.ActionUpdated, id))
	return updated, err
}

// Delete removes the transaction with the given id and reports whether a
// removal occurred. Deleting an absent id is a no-op, not an error.
func (l *Ledger) Delete(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]core.Transaction, 0, len(l.txs))
	removed := false
	for _, t := range l.txs {
		if t.ID == id {
			removed = true
			continue
		}
		next = append(next, t)
	}
	if !removed {
		return false, nil
	}

	err := l.commitLocked(ctx, next)
	if err != nil && !errors.Is(err, ErrPersist) {
		return false, err
	}

	l.publish(ctx, amqp.NewChangeMessage(amqp.ActionDeleted, id))
	return true, err
}

// ReplaceAll atomically swaps the whole collection for the decoded import
// payload. One malformed record rejects the import and leaves current state
// untouched. Imported categories are trusted as historical and not checked
// against the registry. Returns the number of imported transactions.
func (l *Ledger) ReplaceAll(ctx context.Context, payload []byte) (int, error) {
	txs, err := codec.DecodeImport(payload)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err = l.commitLocked(ctx, txs)
	if err != nil && !errors.Is(err, ErrPersist) {
		return 0, err
	}

	l.nextID = maxID(txs) + 1
	l.publish(ctx, amqp.NewImportMessage(len(txs)))
	return len(txs), err
}

// Get returns the transaction with the given id.
func (l *Ledger) Get(id int64) (core.Transaction, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// All returns the full collection in store order, most-recent-first for
// transactions created in this session; imported data keeps payload order.
func (l *Ledger) All() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Transaction(nil), l.txs...)
}

// Filter returns the transactions matching the type and category filters,
// in store order.
func (l *Ledger) Filter(f core.Filter) []core.Transaction {
	return core.Apply(l.All(), f)
}

// Summary computes the aggregate totals over the current collection.
func (l *Ledger) Summary() core.Summary {
	return core.Summarize(l.All())
}

// Breakdown sums expense amounts per category.
func (l *Ledger) Breakdown() map[string]core.Money {
	return core.BreakdownByCategory(l.All())
}

// ChartBreakdown returns the expense breakdown with stable chart colors.
func (l *Ledger) ChartBreakdown() []core.CategoryAmount {
	return core.ChartBreakdown(l.All())
}

// Export serializes the current collection with its computed summary and an
// export timestamp. The embedded summary is informational; imports ignore
// it.
func (l *Ledger) Export(ctx context.Context) ([]byte, error) {
	return codec.EncodeSnapshot(l.All(), time.Now().UTC().Truncate(time.Second))
}

func (l *Ledger) validateDraft(kind core.Kind, d Draft) error {
	if !kind.Valid() {
		return core.ErrInvalidKind
	}
	if strings.TrimSpace(d.Description) == "" {
		return core.ErrEmptyDescription
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if !l.tax.Contains(kind, d.Category) {
		return fmt.Errorf("%w: %q for kind %s", core.ErrUnknownCategory, d.Category, kind)
	}
	return nil
}

// commitLocked encodes the candidate state, adopts it, and writes through.
// An encode failure leaves state untouched and fails the operation; a write
// failure keeps the in-memory state as the session's source of truth and is
// reported as ErrPersist.
func (l *Ledger) commitLocked(ctx context.Context, next []core.Transaction) error {
	data, err := codec.Encode(next)
	if err != nil {
		return err
	}
	l.txs = next
	if err := l.store.Save(ctx, data); err != nil {
		slog.WarnContext(ctx, "Snapshot write failed, data will not survive a restart", "error", err)
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// publish sends a change event when AMQP is configured. Failures are logged
// and never fail the operation; the mutation already happened.
func (l *Ledger) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"action", msg.Action, "id", msg.ID, "error", err)
	}
}
