/*
Package analyst answers questions about the books with a language model.

PURPOSE:
  Builds a compact, read-only projection of the current snapshot, wraps it
  in a CFO-style prompt and sends it to a generative model. The analyst
  never sees or touches live state: it is handed a copy.

CONTEXT LIMITS:
  Only the most recent RecentTransactions transactions and
  RecentLedgerEntries journal lines are included.

REPLIES:
  Analyze always returns text. Missing credentials, transport failures
  and empty answers each map to a fixed user-facing message; failures are
  logged with the cause.

SEE ALSO:
  - gemini.go: Model backed by google.golang.org/genai
  - service.go: Timeout, fallbacks, logging
*/
package analyst

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

const (
	RecentTransactions  = 15
	RecentLedgerEntries = 20

	DefaultBusinessName = "The Company"
	DefaultLocation     = "Unknown"
)

// Context is what the model is allowed to see.
type Context struct {
	BusinessName       string               `json:"businessName"`
	Location           string               `json:"location"`
	StockValuation     decimal.Decimal      `json:"stockValuation"`
	Products           []ProductSummary     `json:"products"`
	RecentTransactions []ledger.Transaction `json:"recentTransactions"`
	LedgerSummary      []ledger.LedgerEntry `json:"ledgerSummary"`
}

type ProductSummary struct {
	Name string          `json:"name"`
	Qty  decimal.Decimal `json:"qty"`
	Cost decimal.Decimal `json:"cost"`
}

// BuildContext projects a snapshot.
func BuildContext(data ledger.ERPData) Context {
	c := Context{
		BusinessName: DefaultBusinessName,
		Location:     DefaultLocation,
		Products:     []ProductSummary{},
	}
	if p := data.UserProfile; p != nil {
		if p.BusinessName != "" {
			c.BusinessName = p.BusinessName
		}
		if p.Location != "" {
			c.Location = p.Location
		}
	}
	for _, p := range data.Products {
		c.StockValuation = c.StockValuation.Add(p.StockValue())
		c.Products = append(c.Products, ProductSummary{Name: p.Name, Qty: p.Quantity, Cost: p.AverageCost})
	}
	c.RecentTransactions = lastN(data.Transactions, RecentTransactions)
	c.LedgerSummary = lastN(data.Ledger, RecentLedgerEntries)
	return c
}

func lastN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[len(items)-n:]
	}
	return append(make([]T, 0, len(items)), items...)
}

// SystemInstruction frames the model's role.
const SystemInstruction = "You are a highly capable financial analyst AI."

// BuildPrompt renders the CFO prompt for a question.
func BuildPrompt(c Context, query string) (string, error) {
	ctxJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode context: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the Chief Financial Officer (CFO) AI for %s located in %s.\n\n", c.BusinessName, c.Location)
	fmt.Fprintf(&b, "CONTEXT DATA:\n%s\n\n", ctxJSON)
	fmt.Fprintf(&b, "USER QUERY: %q\n\n", query)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Analyze the data strictly based on the numbers provided.\n")
	b.WriteString("2. Format your response using clear Markdown.\n")
	b.WriteString("3. Structure your response into these sections:\n")
	b.WriteString("   - **Executive Summary**: A direct answer to the query.\n")
	b.WriteString("   - **Key Insights**: Bullet points of trends or anomalies found in the data.\n")
	b.WriteString("   - **Financial Recommendation**: Actionable advice based on the analysis.\n\n")
	b.WriteString("Keep the tone professional, concise, and helpful. Use currency formatting ($) for money.\n")
	return b.String(), nil
}
