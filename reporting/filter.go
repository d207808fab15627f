package reporting

import (
	"sort"
	"strings"
	"time"

	"github.com/warp/books-engine/ledger"
)

// TransactionFilter narrows a transaction list. Zero fields match everything.
//
// Search matches the product name or the party, case-insensitively.
// Party matches a substring of the party name. From and To are compared on
// calendar days: To includes its whole day.
type TransactionFilter struct {
	Type   ledger.TransactionType
	Search string
	Party  string
	From   time.Time
	To     time.Time
}

func (f TransactionFilter) match(tx ledger.Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(tx.ProductName), q) &&
			!strings.Contains(strings.ToLower(tx.Party), q) {
			return false
		}
	}
	if p := strings.ToLower(strings.TrimSpace(f.Party)); p != "" {
		if !strings.Contains(strings.ToLower(tx.Party), p) {
			return false
		}
	}
	if !f.From.IsZero() && tx.Date.Before(startOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && !tx.Date.Before(startOfDay(f.To).AddDate(0, 0, 1)) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FilterTransactions returns matching transactions, newest first.
func FilterTransactions(txs []ledger.Transaction, f TransactionFilter) []ledger.Transaction {
	out := []ledger.Transaction{}
	for _, tx := range txs {
		if f.match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Parties returns the distinct suppliers (PURCHASE) or customers (SALE) in
// first-seen order. An empty type returns both.
func Parties(txs []ledger.Transaction, typ ledger.TransactionType) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, tx := range txs {
		if typ != "" && tx.Type != typ {
			continue
		}
		if tx.Party == "" || seen[tx.Party] {
			continue
		}
		seen[tx.Party] = true
		out = append(out, tx.Party)
	}
	return out
}

// LedgerNewestFirst returns a copy of the journal sorted by date, newest
// first. Entries of the same instant keep journal order.
func LedgerNewestFirst(entries []ledger.LedgerEntry) []ledger.LedgerEntry {
	out := append(make([]ledger.LedgerEntry, 0, len(entries)), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
