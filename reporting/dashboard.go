package reporting

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

// SalesTrendWindow is how many of the most recent sales the trend shows.
const SalesTrendWindow = 7

type DashboardMetrics struct {
	StockValue     decimal.Decimal `json:"stockValue"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalPurchases decimal.Decimal `json:"totalPurchases"`
	NetCashFlow    decimal.Decimal `json:"netCashFlow"`
	StockByProduct []StockPoint    `json:"stockByProduct"`
	SalesTrend     []TrendPoint    `json:"salesTrend"`
}

type StockPoint struct {
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Quantity decimal.Decimal `json:"quantity"`
}

type TrendPoint struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Dashboard computes the headline figures. Net cash flow is revenue minus
// purchases; manual journal entries do not move it.
func Dashboard(data ledger.ERPData) DashboardMetrics {
	m := DashboardMetrics{
		StockByProduct: []StockPoint{},
		SalesTrend:     []TrendPoint{},
	}

	for _, p := range data.Products {
		value := p.StockValue()
		m.StockValue = m.StockValue.Add(value)
		m.StockByProduct = append(m.StockByProduct, StockPoint{Name: p.Name, Value: value, Quantity: p.Quantity})
	}

	var sales []ledger.Transaction
	for _, tx := range data.Transactions {
		switch tx.Type {
		case ledger.TxSale:
			m.TotalRevenue = m.TotalRevenue.Add(tx.TotalAmount)
			sales = append(sales, tx)
		case ledger.TxPurchase:
			m.TotalPurchases = m.TotalPurchases.Add(tx.TotalAmount)
		}
	}
	m.NetCashFlow = m.TotalRevenue.Sub(m.TotalPurchases)

	if len(sales) > SalesTrendWindow {
		sales = sales[len(sales)-SalesTrendWindow:]
	}
	for _, tx := range sales {
		m.SalesTrend = append(m.SalesTrend, TrendPoint{Date: tx.Date, Amount: tx.TotalAmount})
	}
	return m
}
