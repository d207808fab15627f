/*
Package ledger provides the accounting transaction engine.

PURPOSE:
  Turns business events (purchase, sale, manual journal entry) into an
  updated inventory state plus the double-entry postings that record them.
  The engine is pure: every call receives the current collections and
  returns the next ones. Nothing is retained between calls.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product:     A stock-keeping unit with weighted-average cost
  - Transaction: An immutable purchase or sale record
  - LedgerEntry: One side of a double-entry posting
  - ERPData:     The aggregate root persisted as one snapshot

DESIGN PRINCIPLES:
  1. Immutability: Transactions and ledger entries are append-only
  2. Precision: All amounts and quantities use decimal.Decimal
  3. Balance: Every TransactionID group sums to zero (debits = credits)
  4. Functional update: ERPData.With* methods return new values

JSON SHAPE:
  Field names match the snapshot format written by the browser
  client (camelCase, top-level keys userProfile, products,
  transactions, ledger), so exported backups stay importable.

SEE ALSO:
  - engine.go: RecordPurchase, RecordSale, RecordManualJournalEntry
  - errors.go: Error taxonomy
  - balance.go: Per-transaction balance checks
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PRODUCT - Stock-keeping unit
// =============================================================================

// Product is one SKU held in inventory.
//
// Quantity may go negative when overselling is allowed (StockPolicyAllowNegative).
// AverageCost is only recomputed by purchases.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Quantity     decimal.Decimal `json:"quantity"`
	AverageCost  decimal.Decimal `json:"averageCost"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// StockValue is Quantity * AverageCost.
func (p Product) StockValue() decimal.Decimal {
	return p.Quantity.Mul(p.AverageCost)
}

// =============================================================================
// TRANSACTION - Purchase or sale event
// =============================================================================

type TransactionType string

const (
	TxPurchase TransactionType = "PURCHASE"
	TxSale     TransactionType = "SALE"
)

func (t TransactionType) Valid() bool {
	return t == TxPurchase || t == TxSale
}

// Transaction records one purchase or sale. UnitPrice is the unit cost for
// purchases and the unit price for sales. Party is the supplier or customer.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Party       string          `json:"party"`
}

// =============================================================================
// LEDGER ENTRY - One side of a posting
// =============================================================================

// LedgerEntry is one debit or credit line. Entries sharing a TransactionID
// form one balanced group.
type LedgerEntry struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Account       string          `json:"account"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// =============================================================================
// AGGREGATE ROOT
// =============================================================================

type UserProfile struct {
	Name         string `json:"name"`
	BusinessName string `json:"businessName"`
	Location     string `json:"location"`
	Role         string `json:"role,omitempty"`
	Industry     string `json:"industry,omitempty"`
}

// ERPData is everything the business has recorded. It is held in memory and
// persisted as a single snapshot.
type ERPData struct {
	UserProfile  *UserProfile  `json:"userProfile,omitempty"`
	Products     []Product     `json:"products"`
	Transactions []Transaction `json:"transactions"`
	Ledger       []LedgerEntry `json:"ledger"`
}

// Empty returns a snapshot with non-nil, empty collections.
func Empty() ERPData {
	return ERPData{
		UserProfile:  &UserProfile{},
		Products:     []Product{},
		Transactions: []Transaction{},
		Ledger:       []LedgerEntry{},
	}
}

// Clone returns a deep copy. Collections are never nil in the copy.
func (d ERPData) Clone() ERPData {
	out := ERPData{
		Products:     append(make([]Product, 0, len(d.Products)), d.Products...),
		Transactions: append(make([]Transaction, 0, len(d.Transactions)), d.Transactions...),
		Ledger:       append(make([]LedgerEntry, 0, len(d.Ledger)), d.Ledger...),
	}
	if d.UserProfile != nil {
		p := *d.UserProfile
		out.UserProfile = &p
	}
	return out
}

// WithPurchase returns the snapshot after applying a purchase result.
func (d ERPData) WithPurchase(r PurchaseResult) ERPData {
	next := d.Clone()
	next.Products = append(make([]Product, 0, len(r.Products)), r.Products...)
	next.Transactions = append(next.Transactions, r.Transaction)
	next.Ledger = append(next.Ledger, r.Entries...)
	return next
}

// WithSale returns the snapshot after applying a sale result.
func (d ERPData) WithSale(r SaleResult) ERPData {
	next := d.Clone()
	next.Products = append(make([]Product, 0, len(r.Products)), r.Products...)
	next.Transactions = append(next.Transactions, r.Transaction)
	next.Ledger = append(next.Ledger, r.Entries...)
	return next
}

// WithJournal returns the snapshot with manual journal entries appended.
func (d ERPData) WithJournal(r JournalResult) ERPData {
	next := d.Clone()
	next.Ledger = append(next.Ledger, r.Entries...)
	return next
}

// WithProfile returns the snapshot with the profile replaced.
func (d ERPData) WithProfile(p UserProfile) ERPData {
	next := d.Clone()
	next.UserProfile = &p
	return next
}

// FindProductBySKU returns the index of the product with the given SKU or -1.
func FindProductBySKU(products []Product, sku string) int {
	for i, p := range products {
		if p.SKU == sku {
			return i
		}
	}
	return -1
}

// FindProductByID returns the index of the product with the given ID or -1.
func FindProductByID(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
