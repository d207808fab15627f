/*
Package bookkeeping holds the current books and applies events to them.

PURPOSE:
  Books is the State Store: it owns the one ERPData value of a running
  instance, runs each event through the ledger engine, swaps in the
  result and saves it. Reads get deep copies.

CONCURRENCY:
  One mutex serializes every state change. An engine call and the swap
  that follows it run to completion before the next event starts, so two
  sales can never both see the same stock.

PERSISTENCE:
  After a successful change the new snapshot is saved. If the save fails
  the in-memory state keeps the new value and the call returns a
  *PersistError together with the operation's result; the next change
  saves again.

FAILURE:
  Engine and validation errors leave the state untouched.

SEE ALSO:
  - ledger/engine.go: The postings
  - snapshot.go: Import/export codec
  - store/: SnapshotStore implementations
*/
package bookkeeping

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warp/books-engine/ledger"
)

// =============================================================================
// BOOKS
// =============================================================================

type Books struct {
	mu     sync.Mutex
	data   ledger.ERPData
	engine *ledger.Engine
	store  SnapshotStore
	log    logrus.FieldLogger
}

type Option func(*Books)

// WithEngine replaces the default engine (UUID ids, system clock, block
// overselling).
func WithEngine(e *ledger.Engine) Option {
	return func(b *Books) { b.engine = e }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Books) { b.log = log }
}

// Open loads the persisted snapshot from store, or starts empty. A nil store
// keeps the books in memory only.
func Open(ctx context.Context, store SnapshotStore, opts ...Option) (*Books, error) {
	if store == nil {
		store = discardStore{}
	}
	b := &Books{
		engine: ledger.NewEngine(),
		store:  store,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	data, found, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !found {
		data = ledger.Empty()
	}
	b.data = data.Clone()
	if b.data.UserProfile == nil {
		b.data.UserProfile = &ledger.UserProfile{}
	}

	b.log.WithFields(logrus.Fields{
		"found":        found,
		"products":     len(b.data.Products),
		"transactions": len(b.data.Transactions),
		"entries":      len(b.data.Ledger),
	}).Info("books opened")
	return b, nil
}

// StockPolicy reports how the engine treats overselling.
func (b *Books) StockPolicy() ledger.StockPolicy {
	return b.engine.StockPolicy
}

// Snapshot returns a deep copy of the current state.
func (b *Books) Snapshot() ledger.ERPData {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.Clone()
}

// =============================================================================
// EVENTS
// =============================================================================

// Purchase records a stock purchase. A non-nil error with a populated
// result means the purchase was applied but not saved (see ErrPersist).
func (b *Books) Purchase(ctx context.Context, in ledger.PurchaseInput) (ledger.PurchaseResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.engine.RecordPurchase(in, b.data.Products)
	if err != nil {
		b.rejected("purchase", err, logrus.Fields{"sku": in.SKU})
		return ledger.PurchaseResult{}, err
	}
	b.log.WithFields(logrus.Fields{
		"transaction_id": res.Transaction.ID,
		"product_id":     res.Transaction.ProductID,
		"sku":            in.SKU,
		"quantity":       in.Quantity.String(),
		"total":          res.Transaction.TotalAmount.String(),
	}).Info("purchase recorded")
	return res, b.commit(ctx, b.data.WithPurchase(res))
}

// Sale records a cash sale.
func (b *Books) Sale(ctx context.Context, in ledger.SaleInput) (ledger.SaleResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.engine.RecordSale(in, b.data.Products)
	if err != nil {
		b.rejected("sale", err, logrus.Fields{"product_id": in.ProductID})
		return ledger.SaleResult{}, err
	}
	entry := b.log.WithFields(logrus.Fields{
		"transaction_id": res.Transaction.ID,
		"product_id":     in.ProductID,
		"quantity":       in.Quantity.String(),
		"revenue":        res.Revenue.String(),
		"cogs":           res.CostOfGoods.String(),
	})
	if res.OversoldBy.IsPositive() {
		entry.WithField("oversold_by", res.OversoldBy.String()).Warn("sale recorded against backorder")
	} else {
		entry.Info("sale recorded")
	}
	return res, b.commit(ctx, b.data.WithSale(res))
}

// ManualEntry posts a balanced debit/credit pair.
func (b *Books) ManualEntry(ctx context.Context, in ledger.JournalInput) (ledger.JournalResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.engine.RecordManualJournalEntry(in)
	if err != nil {
		b.rejected("manual entry", err, logrus.Fields{"debit": in.DebitAccount, "credit": in.CreditAccount})
		return ledger.JournalResult{}, err
	}
	b.log.WithFields(logrus.Fields{
		"transaction_id": res.TransactionID,
		"debit":          in.DebitAccount,
		"credit":         in.CreditAccount,
		"amount":         in.Amount.String(),
	}).Info("manual entry recorded")
	return res, b.commit(ctx, b.data.WithJournal(res))
}

// UpdateProfile replaces the user profile.
func (b *Books) UpdateProfile(ctx context.Context, p ledger.UserProfile) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.WithField("business", p.BusinessName).Info("profile updated")
	return b.commit(ctx, b.data.WithProfile(p))
}

// =============================================================================
// WHOLE-STATE OPERATIONS
// =============================================================================

// Import replaces the state with a decoded backup. Nothing changes unless
// the whole document validates.
func (b *Books) Import(ctx context.Context, raw []byte) error {
	data, err := DecodeSnapshot(raw)
	if err != nil {
		b.log.WithError(err).Warn("import rejected")
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.WithFields(logrus.Fields{
		"products":     len(data.Products),
		"transactions": len(data.Transactions),
		"entries":      len(data.Ledger),
	}).Info("snapshot imported")
	return b.commit(ctx, data)
}

// Export encodes the current state and names the file after the engine's
// current date.
func (b *Books) Export() ([]byte, string, error) {
	data := b.Snapshot()
	raw, err := EncodeSnapshot(data)
	if err != nil {
		return nil, "", fmt.Errorf("encode snapshot: %w", err)
	}
	return raw, ExportFilename(b.engine.Clock.Now()), nil
}

// Replace swaps in data after checking that its journal balances.
func (b *Books) Replace(ctx context.Context, data ledger.ERPData) error {
	if err := ledger.CheckBalanced(data.Ledger); err != nil {
		return err
	}
	next := data.Clone()
	if next.UserProfile == nil {
		next.UserProfile = &ledger.UserProfile{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commit(ctx, next)
}

// Reset clears everything, including the profile.
func (b *Books) Reset(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Warn("books reset")
	return b.commit(ctx, ledger.Empty())
}

// =============================================================================
// HELPERS
// =============================================================================

// commit must be called with mu held.
func (b *Books) commit(ctx context.Context, next ledger.ERPData) error {
	b.data = next
	if err := b.store.Save(ctx, next.Clone()); err != nil {
		b.log.WithError(err).Error("snapshot not saved")
		return &PersistError{Err: err}
	}
	return nil
}

func (b *Books) rejected(op string, err error, fields logrus.Fields) {
	b.log.WithFields(fields).WithFields(logrus.Fields{
		"kind": ledger.KindOf(err),
	}).WithError(err).Warn(op + " rejected")
}
