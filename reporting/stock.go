package reporting

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

// =============================================================================
// STOCK STATUS
// =============================================================================

// LowStockThreshold is the quantity below which a product is Low Stock.
var LowStockThreshold = decimal.NewFromInt(5)

type StockStatus string

const (
	StatusOutOfStock StockStatus = "Out of Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusInStock    StockStatus = "In Stock"
)

// StockStatusOf classifies a quantity. Negative quantities (backorders) are
// Low Stock: only exactly zero is Out of Stock.
func StockStatusOf(qty decimal.Decimal) StockStatus {
	switch {
	case qty.IsZero():
		return StatusOutOfStock
	case qty.LessThan(LowStockThreshold):
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// =============================================================================
// INVENTORY VIEW
// =============================================================================

type InventoryRow struct {
	ledger.Product
	Value  decimal.Decimal `json:"stockValue"`
	Status StockStatus     `json:"status"`
}

// Inventory returns every product with its value and status, highest stock
// value first. Ties keep the input order.
func Inventory(products []ledger.Product) []InventoryRow {
	rows := make([]InventoryRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, InventoryRow{Product: p, Value: p.StockValue(), Status: StockStatusOf(p.Quantity)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows
}

// SellableProducts returns products with quantity > 0, in input order.
func SellableProducts(products []ledger.Product) []ledger.Product {
	out := []ledger.Product{}
	for _, p := range products {
		if p.Quantity.IsPositive() {
			out = append(out, p)
		}
	}
	return out
}
