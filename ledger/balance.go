/*
balance.go - Structural balance of the journal

PURPOSE:
  Every group of entries sharing a TransactionID must have equal debit and
  credit sums. The engine only ever produces balanced groups; these helpers
  let the State Store and the tests verify it, and let an import reject a
  snapshot that breaks it.
*/
package ledger

import "github.com/shopspring/decimal"

// GroupTotal is the debit and credit sum of one transaction group.
type GroupTotal struct {
	TransactionID string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Entries       int
}

func (g GroupTotal) Balanced() bool {
	return g.Debit.Equal(g.Credit)
}

// GroupTotals sums entries per TransactionID, in first-seen order.
func GroupTotals(entries []LedgerEntry) []GroupTotal {
	index := make(map[string]int)
	var groups []GroupTotal
	for _, e := range entries {
		i, ok := index[e.TransactionID]
		if !ok {
			i = len(groups)
			index[e.TransactionID] = i
			groups = append(groups, GroupTotal{TransactionID: e.TransactionID})
		}
		groups[i].Debit = groups[i].Debit.Add(e.Debit)
		groups[i].Credit = groups[i].Credit.Add(e.Credit)
		groups[i].Entries++
	}
	return groups
}

// CheckBalanced returns an *UnbalancedError for the first group whose sides
// differ, or nil.
func CheckBalanced(entries []LedgerEntry) error {
	for _, g := range GroupTotals(entries) {
		if !g.Balanced() {
			return &UnbalancedError{TransactionID: g.TransactionID, Debit: g.Debit, Credit: g.Credit}
		}
	}
	return nil
}
