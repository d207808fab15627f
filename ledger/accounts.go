package ledger

// =============================================================================
// ACCOUNTS
// =============================================================================
// Account is a free-text label on LedgerEntry. The engine only posts to the
// four labels below; manual entries may use anything. Category gives
// reporting a way to split balance-sheet from income-statement accounts
// (see factory.Chart).

const (
	AccountInventory        = "Inventory (Asset)"
	AccountCash             = "Cash / Bank"
	AccountSalesRevenue     = "Sales Revenue"
	AccountCOGS             = "Cost of Goods Sold (Expense)"
	AccountReceivable       = "Accounts Receivable"
	AccountPayable          = "Accounts Payable"
	AccountOperatingExpense = "Operating Expenses"
	AccountCapital          = "Capital / Equity"
)

// PredefinedAccounts are offered to users composing a manual journal entry.
var PredefinedAccounts = []string{
	AccountCash,
	AccountInventory,
	AccountReceivable,
	AccountPayable,
	AccountSalesRevenue,
	AccountCOGS,
	AccountOperatingExpense,
	AccountCapital,
}

type Category string

const (
	CategoryAsset     Category = "ASSET"
	CategoryLiability Category = "LIABILITY"
	CategoryEquity    Category = "EQUITY"
	CategoryRevenue   Category = "REVENUE"
	CategoryExpense   Category = "EXPENSE"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAsset, CategoryLiability, CategoryEquity, CategoryRevenue, CategoryExpense:
		return true
	}
	return false
}

// DebitNormal reports whether the category's balance normally sits on the
// debit side.
func (c Category) DebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}
