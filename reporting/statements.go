/*
statements.go - Income statement and balance sheet

PURPOSE:
  Partitions trial-balance rows by chart category. Accounts the chart does
  not know are listed as uncategorized and left out of every total, so a
  typo in a manual entry shows up instead of silently landing somewhere.

SIGN CONVENTION:
  Asset, expense:           debit - credit
  Liability, equity, revenue: credit - debit

BALANCE SHEET IDENTITY:
  assets = liabilities + equity + retained earnings
  Retained earnings is the income statement's net profit. The identity
  holds whenever the journal balances and every account is categorized.
*/
package reporting

import (
	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/factory"
	"github.com/warp/books-engine/ledger"
)

// AccountLine is one account in a statement section.
type AccountLine struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

type Section struct {
	Lines []AccountLine   `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func (s *Section) add(account string, amount decimal.Decimal) {
	s.Lines = append(s.Lines, AccountLine{Account: account, Amount: amount})
	s.Total = s.Total.Add(amount)
}

func newSection() Section {
	return Section{Lines: []AccountLine{}}
}

type IncomeStatement struct {
	Revenue       Section         `json:"revenue"`
	Expenses      Section         `json:"expenses"`
	NetProfit     decimal.Decimal `json:"netProfit"`
	Uncategorized []string        `json:"uncategorized"`
}

type BalanceSheet struct {
	Assets           Section         `json:"assets"`
	Liabilities      Section         `json:"liabilities"`
	Equity           Section         `json:"equity"`
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	Balanced         bool            `json:"balanced"`
	Uncategorized    []string        `json:"uncategorized"`
}

// NewIncomeStatement reports revenue and expense accounts. A nil chart uses
// factory.DefaultChart.
func NewIncomeStatement(entries []ledger.LedgerEntry, chart *factory.Chart) IncomeStatement {
	if chart == nil {
		chart = factory.DefaultChart()
	}
	is := IncomeStatement{Revenue: newSection(), Expenses: newSection(), Uncategorized: []string{}}

	for _, row := range TrialBalance(entries).Rows {
		cat, ok := chart.CategoryOf(row.Account)
		if !ok {
			is.Uncategorized = append(is.Uncategorized, row.Account)
			continue
		}
		switch cat {
		case ledger.CategoryRevenue:
			is.Revenue.add(row.Account, row.signedBalance().Neg())
		case ledger.CategoryExpense:
			is.Expenses.add(row.Account, row.signedBalance())
		}
	}
	is.NetProfit = is.Revenue.Total.Sub(is.Expenses.Total)
	return is
}

// NewBalanceSheet reports asset, liability and equity accounts with the
// period's net profit as retained earnings.
func NewBalanceSheet(entries []ledger.LedgerEntry, chart *factory.Chart) BalanceSheet {
	if chart == nil {
		chart = factory.DefaultChart()
	}
	bs := BalanceSheet{
		Assets:        newSection(),
		Liabilities:   newSection(),
		Equity:        newSection(),
		Uncategorized: []string{},
	}

	for _, row := range TrialBalance(entries).Rows {
		cat, ok := chart.CategoryOf(row.Account)
		if !ok {
			bs.Uncategorized = append(bs.Uncategorized, row.Account)
			continue
		}
		switch cat {
		case ledger.CategoryAsset:
			bs.Assets.add(row.Account, row.signedBalance())
		case ledger.CategoryLiability:
			bs.Liabilities.add(row.Account, row.signedBalance().Neg())
		case ledger.CategoryEquity:
			bs.Equity.add(row.Account, row.signedBalance().Neg())
		}
	}

	bs.RetainedEarnings = NewIncomeStatement(entries, chart).NetProfit
	claims := bs.Liabilities.Total.Add(bs.Equity.Total).Add(bs.RetainedEarnings)
	bs.Balanced = bs.Assets.Total.Equal(claims)
	return bs
}
