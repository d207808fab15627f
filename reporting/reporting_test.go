package reporting_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/books-engine/factory"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/reporting"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// FIXTURES
// =============================================================================

var day = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s got %s", want, got}, msgAndArgs...)...)
}

// shopBooks buys 10@2 and 5@5 of one SKU, sells 3@8 and pays 4 of
// operating expenses.
func shopBooks(t *testing.T) ledger.ERPData {
	t.Helper()
	e := &ledger.Engine{
		IDs:         ledger.NewSequenceSource("r"),
		Clock:       ledger.FixedClock{At: day},
		StockPolicy: ledger.StockPolicyBlock,
	}
	data := ledger.Empty()

	for _, lot := range []struct{ qty, cost string }{{"10", "2"}, {"5", "5"}} {
		res, err := e.RecordPurchase(ledger.PurchaseInput{
			ProductName: "Widget", SKU: "W-1", Quantity: dec(lot.qty), UnitCost: dec(lot.cost), Supplier: "Acme",
		}, data.Products)
		require.NoError(t, err)
		data = data.WithPurchase(res)
	}

	sale, err := e.RecordSale(ledger.SaleInput{
		ProductID: data.Products[0].ID, Quantity: dec("3"), UnitPrice: dec("8"), Customer: "Bob",
	}, data.Products)
	require.NoError(t, err)
	data = data.WithSale(sale)

	rent, err := e.RecordManualJournalEntry(ledger.JournalInput{
		DebitAccount: ledger.AccountOperatingExpense, CreditAccount: ledger.AccountCash,
		Amount: dec("4"), Description: "Rent",
	})
	require.NoError(t, err)
	return data.WithJournal(rent)
}

// =============================================================================
// TRIAL BALANCE
// =============================================================================

func TestTrialBalance_ShopScenario(t *testing.T) {
	tb := reporting.TrialBalance(shopBooks(t).Ledger)

	require.Len(t, tb.Rows, 5)
	assert.Equal(t, []string{
		ledger.AccountInventory, ledger.AccountCash, ledger.AccountSalesRevenue,
		ledger.AccountCOGS, ledger.AccountOperatingExpense,
	}, []string{tb.Rows[0].Account, tb.Rows[1].Account, tb.Rows[2].Account, tb.Rows[3].Account, tb.Rows[4].Account})

	inv, _ := tb.Row(ledger.AccountInventory)
	assertDecimal(t, "45", inv.Debit)
	assertDecimal(t, "9", inv.Credit)
	assertDecimal(t, "36", inv.Net)
	assert.Equal(t, reporting.SideDebit, inv.Side)

	cash, _ := tb.Row(ledger.AccountCash)
	assertDecimal(t, "25", cash.Net)
	assert.Equal(t, reporting.SideCredit, cash.Side)

	rev, _ := tb.Row(ledger.AccountSalesRevenue)
	assertDecimal(t, "24", rev.Net)
	assert.Equal(t, reporting.SideCredit, rev.Side)

	assertDecimal(t, "82", tb.TotalDebit)
	assertDecimal(t, "82", tb.TotalCredit)
	assert.True(t, tb.Balanced)
}

func TestTrialBalance_EmptyAndTie(t *testing.T) {
	empty := reporting.TrialBalance(nil)
	assert.Empty(t, empty.Rows)
	assert.True(t, empty.Balanced)

	// GIVEN: An account debited and credited equally
	entries := []ledger.LedgerEntry{
		{TransactionID: "1", Account: "Suspense", Debit: dec("5"), Credit: decimal.Zero},
		{TransactionID: "1", Account: ledger.AccountCash, Debit: decimal.Zero, Credit: dec("5")},
		{TransactionID: "2", Account: ledger.AccountCash, Debit: dec("5"), Credit: decimal.Zero},
		{TransactionID: "2", Account: "Suspense", Debit: decimal.Zero, Credit: dec("5")},
	}
	tb := reporting.TrialBalance(entries)

	// THEN: Net is zero and the side is Dr
	row, ok := tb.Row("Suspense")
	require.True(t, ok)
	assert.True(t, row.Net.IsZero())
	assert.Equal(t, reporting.SideDebit, row.Side)
}

func TestTrialBalance_Unbalanced(t *testing.T) {
	tb := reporting.TrialBalance([]ledger.LedgerEntry{
		{TransactionID: "x", Account: ledger.AccountCash, Debit: dec("10")},
	})
	assert.False(t, tb.Balanced)
}

func TestReports_Idempotent(t *testing.T) {
	data := shopBooks(t)
	assert.Equal(t, reporting.TrialBalance(data.Ledger), reporting.TrialBalance(data.Ledger))
	assert.Equal(t, reporting.Dashboard(data), reporting.Dashboard(data))
	assert.Equal(t, reporting.Inventory(data.Products), reporting.Inventory(data.Products))
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_ShopScenario(t *testing.T) {
	m := reporting.Dashboard(shopBooks(t))

	assertDecimal(t, "36", m.StockValue)
	assertDecimal(t, "24", m.TotalRevenue)
	assertDecimal(t, "45", m.TotalPurchases)
	assertDecimal(t, "-21", m.NetCashFlow)

	require.Len(t, m.StockByProduct, 1)
	assert.Equal(t, "Widget", m.StockByProduct[0].Name)
	assertDecimal(t, "12", m.StockByProduct[0].Quantity)
	require.Len(t, m.SalesTrend, 1)
	assertDecimal(t, "24", m.SalesTrend[0].Amount)
}

func TestDashboard_SalesTrendKeepsLastSeven(t *testing.T) {
	data := ledger.Empty()
	for i := 1; i <= 10; i++ {
		data.Transactions = append(data.Transactions, ledger.Transaction{
			Type: ledger.TxSale, Date: day.AddDate(0, 0, i), TotalAmount: decimal.NewFromInt(int64(i)),
		})
	}
	m := reporting.Dashboard(data)

	require.Len(t, m.SalesTrend, reporting.SalesTrendWindow)
	assertDecimal(t, "4", m.SalesTrend[0].Amount)
	assertDecimal(t, "10", m.SalesTrend[6].Amount)
	assertDecimal(t, "55", m.TotalRevenue)
}

func TestDashboard_Empty(t *testing.T) {
	m := reporting.Dashboard(ledger.Empty())
	assert.True(t, m.StockValue.IsZero())
	assert.True(t, m.NetCashFlow.IsZero())
	assert.NotNil(t, m.StockByProduct)
	assert.NotNil(t, m.SalesTrend)
}

// =============================================================================
// STOCK
// =============================================================================

func TestStockStatusOf(t *testing.T) {
	tests := []struct {
		qty  string
		want reporting.StockStatus
	}{
		{"0", reporting.StatusOutOfStock},
		{"1", reporting.StatusLowStock},
		{"4.99", reporting.StatusLowStock},
		{"5", reporting.StatusInStock},
		{"120", reporting.StatusInStock},
		{"-2", reporting.StatusLowStock},
	}
	for _, tt := range tests {
		t.Run(tt.qty, func(t *testing.T) {
			assert.Equal(t, tt.want, reporting.StockStatusOf(dec(tt.qty)))
		})
	}
}

func TestInventory_SortedByValue(t *testing.T) {
	products := []ledger.Product{
		{ID: "a", Name: "Cheap", Quantity: dec("10"), AverageCost: dec("1")},
		{ID: "b", Name: "Dear", Quantity: dec("2"), AverageCost: dec("50")},
		{ID: "c", Name: "Gone", Quantity: dec("0"), AverageCost: dec("9")},
	}
	rows := reporting.Inventory(products)

	require.Len(t, rows, 3)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, "a", rows[1].ID)
	assert.Equal(t, "c", rows[2].ID)
	assertDecimal(t, "100", rows[0].Value)
	assert.Equal(t, reporting.StatusLowStock, rows[0].Status)
	assert.Equal(t, reporting.StatusOutOfStock, rows[2].Status)

	sellable := reporting.SellableProducts(products)
	assert.Len(t, sellable, 2)
}

// =============================================================================
// FILTERS
// =============================================================================

func filterFixture() []ledger.Transaction {
	return []ledger.Transaction{
		{ID: "p1", Type: ledger.TxPurchase, Date: day, ProductName: "Widget", Party: "Acme Supplies"},
		{ID: "s1", Type: ledger.TxSale, Date: day.Add(time.Hour), ProductName: "Widget", Party: "Bob"},
		{ID: "p2", Type: ledger.TxPurchase, Date: day.AddDate(0, 0, 2), ProductName: "Gadget", Party: "Globex"},
		{ID: "s2", Type: ledger.TxSale, Date: day.AddDate(0, 0, 3), ProductName: "Gadget", Party: "Alice"},
		{ID: "p3", Type: ledger.TxPurchase, Date: day.AddDate(0, 0, 5), ProductName: "Widget", Party: "Acme Supplies"},
	}
}

func ids(txs []ledger.Transaction) []string {
	out := []string{}
	for _, tx := range txs {
		out = append(out, tx.ID)
	}
	return out
}

func TestFilterTransactions(t *testing.T) {
	txs := filterFixture()

	tests := []struct {
		name   string
		filter reporting.TransactionFilter
		want   []string
	}{
		{"all newest first", reporting.TransactionFilter{}, []string{"p3", "s2", "p2", "s1", "p1"}},
		{"purchases", reporting.TransactionFilter{Type: ledger.TxPurchase}, []string{"p3", "p2", "p1"}},
		{"search product", reporting.TransactionFilter{Search: "gadg"}, []string{"s2", "p2"}},
		{"search party", reporting.TransactionFilter{Type: ledger.TxSale, Search: "ALICE"}, []string{"s2"}},
		{"party substring", reporting.TransactionFilter{Party: "acme"}, []string{"p3", "p1"}},
		{"from date", reporting.TransactionFilter{From: day.AddDate(0, 0, 2).Add(10 * time.Hour)}, []string{"p3", "s2", "p2"}},
		{"to date includes whole day", reporting.TransactionFilter{To: day}, []string{"s1", "p1"}},
		{"range", reporting.TransactionFilter{From: day.AddDate(0, 0, 1), To: day.AddDate(0, 0, 3)}, []string{"s2", "p2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(reporting.FilterTransactions(txs, tt.filter)))
		})
	}
}

func TestParties(t *testing.T) {
	txs := filterFixture()
	assert.Equal(t, []string{"Acme Supplies", "Globex"}, reporting.Parties(txs, ledger.TxPurchase))
	assert.Equal(t, []string{"Bob", "Alice"}, reporting.Parties(txs, ledger.TxSale))
	assert.Len(t, reporting.Parties(txs, ""), 4)
}

func TestLedgerNewestFirst_DoesNotMutate(t *testing.T) {
	entries := []ledger.LedgerEntry{
		{ID: "1", Date: day},
		{ID: "2", Date: day.Add(time.Minute)},
		{ID: "3", Date: day.Add(time.Minute)},
	}
	sorted := reporting.LedgerNewestFirst(entries)

	assert.Equal(t, "2", sorted[0].ID)
	assert.Equal(t, "3", sorted[1].ID)
	assert.Equal(t, "1", sorted[2].ID)
	assert.Equal(t, "1", entries[0].ID)
}

// =============================================================================
// STATEMENTS
// =============================================================================

func TestIncomeStatementAndBalanceSheet(t *testing.T) {
	data := shopBooks(t)

	is := reporting.NewIncomeStatement(data.Ledger, nil)
	assertDecimal(t, "24", is.Revenue.Total)
	assertDecimal(t, "13", is.Expenses.Total)
	assertDecimal(t, "11", is.NetProfit)
	assert.Empty(t, is.Uncategorized)

	bs := reporting.NewBalanceSheet(data.Ledger, factory.DefaultChart())
	assertDecimal(t, "11", bs.Assets.Total) // inventory 36, cash -25
	assertDecimal(t, "11", bs.RetainedEarnings)
	assert.True(t, bs.Balanced)
}

func TestBalanceSheet_CapitalAndUncategorized(t *testing.T) {
	// GIVEN: Owner injects capital, plus an entry to an unknown account
	entries := []ledger.LedgerEntry{
		{TransactionID: "c", Account: ledger.AccountCash, Debit: dec("1000"), Credit: decimal.Zero},
		{TransactionID: "c", Account: ledger.AccountCapital, Debit: decimal.Zero, Credit: dec("1000")},
		{TransactionID: "m", Account: "Mystery", Debit: dec("5"), Credit: decimal.Zero},
		{TransactionID: "m", Account: ledger.AccountCash, Debit: decimal.Zero, Credit: dec("5")},
	}

	bs := reporting.NewBalanceSheet(entries, nil)

	assertDecimal(t, "995", bs.Assets.Total)
	assertDecimal(t, "1000", bs.Equity.Total)
	assert.Equal(t, []string{"Mystery"}, bs.Uncategorized)
	assert.False(t, bs.Balanced, "uncategorized amounts leave the identity open")
}

// =============================================================================
// WORKBOOK
// =============================================================================

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reporting.WriteWorkbook(&buf, shopBooks(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	tbRows, err := f.GetRows(reporting.SheetTrialBalance)
	require.NoError(t, err)
	require.Len(t, tbRows, 7) // header + 5 accounts + total
	assert.Equal(t, "Account", tbRows[0][0])
	assert.Equal(t, ledger.AccountInventory, tbRows[1][0])
	assert.Equal(t, "TOTAL", tbRows[6][0])

	invRows, err := f.GetRows(reporting.SheetInventory)
	require.NoError(t, err)
	require.Len(t, invRows, 2)
	assert.Equal(t, "W-1", invRows[1][1])

	journal, err := f.GetRows(reporting.SheetJournal)
	require.NoError(t, err)
	assert.Len(t, journal, 1+10)
}
