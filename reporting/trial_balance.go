/*
Package reporting provides read models over the books.

PURPOSE:
  Everything a user looks at is derived here from the current snapshot:
  trial balance, dashboard metrics, inventory status, statements and
  filtered transaction lists. Every function is a pure projection. Nothing
  is cached and calling a report twice on the same input yields the same
  result.

KEY CONCEPTS:
  - Trial balance: per-account debit/credit sums with a Dr/Cr net
  - Dashboard:     stock value, revenue, purchases, net cash flow
  - Statements:    income statement and balance sheet through a Chart

SEE ALSO:
  - ledger/types.go: Inputs to every report
  - factory/chart.go: Account categories for the statements
*/
package reporting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

// =============================================================================
// TRIAL BALANCE
// =============================================================================

type Side string

const (
	SideDebit  Side = "Dr"
	SideCredit Side = "Cr"
)

// TrialBalanceRow is one account's position.
type TrialBalanceRow struct {
	Account string          `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Net     decimal.Decimal `json:"net"`
	Side    Side            `json:"side"`
}

type TrialBalanceReport struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	Balanced    bool              `json:"balanced"`
}

// TrialBalance aggregates entries per account. Rows keep the order in which
// accounts first appear in entries. Net is |debit-credit|; a zero net is
// reported on the debit side.
func TrialBalance(entries []ledger.LedgerEntry) TrialBalanceReport {
	index := make(map[string]int)
	rows := []TrialBalanceRow{}
	var totalDebit, totalCredit decimal.Decimal

	for _, e := range entries {
		i, ok := index[e.Account]
		if !ok {
			i = len(rows)
			index[e.Account] = i
			rows = append(rows, TrialBalanceRow{Account: e.Account})
		}
		rows[i].Debit = rows[i].Debit.Add(e.Debit)
		rows[i].Credit = rows[i].Credit.Add(e.Credit)
		totalDebit = totalDebit.Add(e.Debit)
		totalCredit = totalCredit.Add(e.Credit)
	}

	for i := range rows {
		diff := rows[i].Debit.Sub(rows[i].Credit)
		rows[i].Net = diff.Abs()
		rows[i].Side = SideDebit
		if diff.IsNegative() {
			rows[i].Side = SideCredit
		}
	}

	return TrialBalanceReport{
		Rows:        rows,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Balanced:    totalDebit.Equal(totalCredit),
	}
}

// Row returns the row for an account, if present.
func (r TrialBalanceReport) Row(account string) (TrialBalanceRow, bool) {
	for _, row := range r.Rows {
		if row.Account == account {
			return row, true
		}
	}
	return TrialBalanceRow{}, false
}

// signedBalance is debit minus credit for one account.
func (r TrialBalanceRow) signedBalance() decimal.Decimal {
	return r.Debit.Sub(r.Credit)
}
