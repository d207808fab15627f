/*
engine.go - Purchase, sale and manual journal postings

PURPOSE:
  The three operations that change the books. Each one validates its
  input, computes the next product list and returns the balanced entries
  to append. Inputs are never mutated; on error nothing is produced.

POSTINGS:
  Purchase (2 entries, one group):
    Dr Inventory (Asset)              total
    Cr Cash / Bank                    total

  Sale (4 entries, one group, two independent pairs):
    Dr Cash / Bank                    quantity * unitPrice
    Cr Sales Revenue                  quantity * unitPrice
    Dr Cost of Goods Sold (Expense)   quantity * averageCost
    Cr Inventory (Asset)              quantity * averageCost

  Manual (2 entries, fresh group id):
    Dr <debit account>                amount
    Cr <credit account>               amount

WEIGHTED AVERAGE COST:
  newAvg = (oldQty*oldAvg + qty*unitCost) / (oldQty + qty)
  A non-positive denominator yields 0. Sales never touch AverageCost.

OVERSELLING:
  StockPolicyBlock (default) rejects a sale larger than the stock on hand
  with InsufficientStockError. StockPolicyAllowNegative lets quantity go
  negative (backorder). The policy is chosen by configuration.

EXAMPLE:
  engine := ledger.NewEngine()
  res, err := engine.RecordPurchase(ledger.PurchaseInput{
      ProductName: "Widget", SKU: "A",
      Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(2),
      Supplier: "Acme",
  }, data.Products)
  if err != nil { ... }
  data = data.WithPurchase(res)

SEE ALSO:
  - types.go: Product, Transaction, LedgerEntry
  - balance.go: CheckBalanced
*/
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK POLICY
// =============================================================================

type StockPolicy string

const (
	StockPolicyBlock         StockPolicy = "block"
	StockPolicyAllowNegative StockPolicy = "allow_negative"
)

// ParseStockPolicy accepts "block", "allow_negative" or "" (block).
func ParseStockPolicy(s string) (StockPolicy, error) {
	switch StockPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StockPolicyBlock:
		return StockPolicyBlock, nil
	case StockPolicyAllowNegative:
		return StockPolicyAllowNegative, nil
	}
	return "", fmt.Errorf("unknown stock policy %q", s)
}

// DefaultMarkup sets the selling price of a newly created product.
var DefaultMarkup = decimal.RequireFromString("1.5")

// =============================================================================
// ENGINE
// =============================================================================

// Engine holds the collaborators a posting needs. It keeps no bookkeeping
// state of its own.
type Engine struct {
	IDs         IDSource
	Clock       Clock
	StockPolicy StockPolicy
}

// NewEngine returns an engine with UUID ids, the system clock and
// overselling blocked.
func NewEngine() *Engine {
	return &Engine{IDs: UUIDSource{}, Clock: SystemClock{}, StockPolicy: StockPolicyBlock}
}

// =============================================================================
// PURCHASE
// =============================================================================

type PurchaseInput struct {
	ProductName string
	SKU         string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Supplier    string
}

type PurchaseResult struct {
	Transaction Transaction
	Entries     []LedgerEntry
	Products    []Product
}

// RecordPurchase books a stock purchase paid immediately in cash.
func (e *Engine) RecordPurchase(in PurchaseInput, products []Product) (PurchaseResult, error) {
	if err := mustBePositive("quantity", in.Quantity); err != nil {
		return PurchaseResult{}, err
	}
	if err := mustNotBeNegative("unit cost", in.UnitCost); err != nil {
		return PurchaseResult{}, err
	}

	now := e.Clock.Now()
	txID := e.IDs.NewID()
	total := in.Quantity.Mul(in.UnitCost)

	updated := append(make([]Product, 0, len(products)+1), products...)
	var productID string

	if i := FindProductBySKU(updated, in.SKU); i >= 0 {
		existing := updated[i]
		productID = existing.ID
		newQty := existing.Quantity.Add(in.Quantity)
		existing.AverageCost = WeightedAverage(existing.Quantity, existing.AverageCost, in.Quantity, in.UnitCost)
		existing.Quantity = newQty
		updated[i] = existing
	} else {
		productID = e.IDs.NewID()
		updated = append(updated, Product{
			ID:           productID,
			Name:         in.ProductName,
			SKU:          in.SKU,
			Quantity:     in.Quantity,
			AverageCost:  in.UnitCost,
			SellingPrice: in.UnitCost.Mul(DefaultMarkup),
		})
	}

	tx := Transaction{
		ID:          txID,
		Type:        TxPurchase,
		Date:        now,
		ProductID:   productID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitCost,
		TotalAmount: total,
		Party:       in.Supplier,
	}

	entries := []LedgerEntry{
		e.debit(txID, now, fmt.Sprintf("Purchase of %s from %s", in.ProductName, in.Supplier), AccountInventory, total),
		e.credit(txID, now, fmt.Sprintf("Payment to %s", in.Supplier), AccountCash, total),
	}

	return PurchaseResult{Transaction: tx, Entries: entries, Products: updated}, nil
}

// WeightedAverage merges a purchase into an existing average cost.
func WeightedAverage(oldQty, oldAvg, qty, unitCost decimal.Decimal) decimal.Decimal {
	totalQty := oldQty.Add(qty)
	if !totalQty.IsPositive() {
		return decimal.Zero
	}
	totalValue := oldQty.Mul(oldAvg).Add(qty.Mul(unitCost))
	return totalValue.Div(totalQty)
}

// =============================================================================
// SALE
// =============================================================================

type SaleInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Customer  string
}

type SaleResult struct {
	Transaction Transaction
	Entries     []LedgerEntry
	Products    []Product
	CostOfGoods decimal.Decimal
	Revenue     decimal.Decimal
	OversoldBy  decimal.Decimal // > 0 only under StockPolicyAllowNegative
}

// RecordSale books a cash sale and recognizes its cost at the product's
// current average cost.
func (e *Engine) RecordSale(in SaleInput, products []Product) (SaleResult, error) {
	i := FindProductByID(products, in.ProductID)
	if i < 0 {
		return SaleResult{}, &UnknownProductError{ProductID: in.ProductID}
	}
	if err := mustBePositive("quantity", in.Quantity); err != nil {
		return SaleResult{}, err
	}
	if err := mustNotBeNegative("unit price", in.UnitPrice); err != nil {
		return SaleResult{}, err
	}

	product := products[i]
	var oversold decimal.Decimal
	if in.Quantity.GreaterThan(product.Quantity) {
		if e.StockPolicy != StockPolicyAllowNegative {
			return SaleResult{}, &InsufficientStockError{
				ProductID: product.ID,
				Available: product.Quantity,
				Requested: in.Quantity,
				Shortfall: in.Quantity.Sub(product.Quantity),
			}
		}
		oversold = in.Quantity.Sub(decimal.Max(product.Quantity, decimal.Zero))
	}

	now := e.Clock.Now()
	txID := e.IDs.NewID()
	revenue := in.Quantity.Mul(in.UnitPrice)
	cogs := in.Quantity.Mul(product.AverageCost)

	updated := append(make([]Product, 0, len(products)), products...)
	product.Quantity = product.Quantity.Sub(in.Quantity)
	updated[i] = product

	tx := Transaction{
		ID:          txID,
		Type:        TxSale,
		Date:        now,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalAmount: revenue,
		Party:       in.Customer,
	}

	entries := []LedgerEntry{
		e.debit(txID, now, fmt.Sprintf("Sale of %s to %s", product.Name, in.Customer), AccountCash, revenue),
		e.credit(txID, now, fmt.Sprintf("Revenue from %s", product.Name), AccountSalesRevenue, revenue),
		e.debit(txID, now, fmt.Sprintf("Cost of goods for %s sale", product.Name), AccountCOGS, cogs),
		e.credit(txID, now, fmt.Sprintf("Inventory reduction for %s", product.Name), AccountInventory, cogs),
	}

	return SaleResult{
		Transaction: tx,
		Entries:     entries,
		Products:    updated,
		CostOfGoods: cogs,
		Revenue:     revenue,
		OversoldBy:  oversold,
	}, nil
}

// =============================================================================
// MANUAL JOURNAL ENTRY
// =============================================================================

type JournalInput struct {
	DebitAccount  string
	CreditAccount string
	Amount        decimal.Decimal
	Description   string
}

type JournalResult struct {
	TransactionID string
	Entries       []LedgerEntry
}

// RecordManualJournalEntry posts an arbitrary balanced pair, e.g. rent or an
// owner's capital injection.
func (e *Engine) RecordManualJournalEntry(in JournalInput) (JournalResult, error) {
	if err := mustBePositive("amount", in.Amount); err != nil {
		return JournalResult{}, err
	}
	debitAccount := strings.TrimSpace(in.DebitAccount)
	creditAccount := strings.TrimSpace(in.CreditAccount)
	if debitAccount == "" {
		return JournalResult{}, fmt.Errorf("debit account is required: %w", ErrInvalidAccount)
	}
	if creditAccount == "" {
		return JournalResult{}, fmt.Errorf("credit account is required: %w", ErrInvalidAccount)
	}

	now := e.Clock.Now()
	txID := e.IDs.NewID()

	return JournalResult{
		TransactionID: txID,
		Entries: []LedgerEntry{
			e.debit(txID, now, in.Description, debitAccount, in.Amount),
			e.credit(txID, now, in.Description, creditAccount, in.Amount),
		},
	}, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Engine) debit(txID string, at time.Time, description, account string, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{
		ID:            e.IDs.NewID(),
		TransactionID: txID,
		Date:          at,
		Description:   description,
		Account:       account,
		Debit:         amount,
		Credit:        decimal.Zero,
	}
}

func (e *Engine) credit(txID string, at time.Time, description, account string, amount decimal.Decimal) LedgerEntry {
	return LedgerEntry{
		ID:            e.IDs.NewID(),
		TransactionID: txID,
		Date:          at,
		Description:   description,
		Account:       account,
		Debit:         decimal.Zero,
		Credit:        amount,
	}
}
