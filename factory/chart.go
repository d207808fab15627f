/*
Package factory provides chart-of-accounts configuration.

PURPOSE:
  Ledger entries carry free-text account labels. A Chart maps labels to
  one of the five accounting categories so reports can split the trial
  balance into an income statement and a balance sheet. The chart is
  configuration, not code: it can be loaded from YAML or JSON.

YAML SCHEMA:
  assets:
    - Cash / Bank
    - Inventory (Asset)
  liabilities:
    - Accounts Payable
  equity:
    - Capital / Equity
  revenue:
    - Sales Revenue
  expenses:
    - Cost of Goods Sold (Expense)
    - Operating Expenses

JSON SCHEMA:
  Same keys as YAML, or a flat list:
  {"accounts": [{"name": "Rent", "category": "EXPENSE"}]}

LOOKUP:
  Labels are matched case-insensitively after trimming. Unknown labels
  are reported as unknown, never guessed.

USAGE:
  chart, err := factory.LoadChart("./accounts.yaml")
  cat, ok := chart.CategoryOf("Sales Revenue") // REVENUE, true

SEE ALSO:
  - ledger/accounts.go: Category and well-known labels
  - reporting/statements.go: Uses Chart to partition accounts
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/warp/books-engine/ledger"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIG SCHEMA TYPES
// =============================================================================

// ChartConfig is the file representation of a chart.
type ChartConfig struct {
	Assets      []string       `yaml:"assets" json:"assets,omitempty"`
	Liabilities []string       `yaml:"liabilities" json:"liabilities,omitempty"`
	Equity      []string       `yaml:"equity" json:"equity,omitempty"`
	Revenue     []string       `yaml:"revenue" json:"revenue,omitempty"`
	Expenses    []string       `yaml:"expenses" json:"expenses,omitempty"`
	Accounts    []AccountEntry `yaml:"accounts" json:"accounts,omitempty"`
}

// AccountEntry is one account in the flat form.
type AccountEntry struct {
	Name     string          `yaml:"name" json:"name"`
	Category ledger.Category `yaml:"category" json:"category"`
}

// =============================================================================
// CHART
// =============================================================================

// Chart maps account labels to categories.
type Chart struct {
	accounts map[string]AccountEntry
	order    []string
}

func NewChart() *Chart {
	return &Chart{accounts: make(map[string]AccountEntry)}
}

// Add registers an account. Re-adding a label moves it to the new category.
func (c *Chart) Add(name string, category ledger.Category) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("account name is required")
	}
	if !category.Valid() {
		return fmt.Errorf("account %q: unknown category %q", name, category)
	}
	key := normalize(name)
	if _, exists := c.accounts[key]; !exists {
		c.order = append(c.order, key)
	}
	c.accounts[key] = AccountEntry{Name: name, Category: category}
	return nil
}

// CategoryOf returns the category of an account label.
func (c *Chart) CategoryOf(account string) (ledger.Category, bool) {
	entry, ok := c.accounts[normalize(account)]
	return entry.Category, ok
}

// Accounts returns all accounts in registration order.
func (c *Chart) Accounts() []AccountEntry {
	out := make([]AccountEntry, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.accounts[key])
	}
	return out
}

// ByCategory returns account names of one category, sorted.
func (c *Chart) ByCategory(category ledger.Category) []string {
	var names []string
	for _, entry := range c.accounts {
		if entry.Category == category {
			names = append(names, entry.Name)
		}
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// =============================================================================
// DEFAULT CHART
// =============================================================================

// DefaultChart covers the accounts offered by the journal form and the
// accounts the engine posts to.
func DefaultChart() *Chart {
	c := NewChart()
	defaults := []AccountEntry{
		{ledger.AccountCash, ledger.CategoryAsset},
		{ledger.AccountInventory, ledger.CategoryAsset},
		{ledger.AccountReceivable, ledger.CategoryAsset},
		{ledger.AccountPayable, ledger.CategoryLiability},
		{ledger.AccountCapital, ledger.CategoryEquity},
		{ledger.AccountSalesRevenue, ledger.CategoryRevenue},
		{ledger.AccountCOGS, ledger.CategoryExpense},
		{ledger.AccountOperatingExpense, ledger.CategoryExpense},
	}
	for _, a := range defaults {
		_ = c.Add(a.Name, a.Category) // static, always valid
	}
	return c
}

// =============================================================================
// PARSING
// =============================================================================

// ParseChartYAML builds a chart on top of the default accounts.
func ParseChartYAML(data []byte) (*Chart, error) {
	var cfg ChartConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid chart YAML: %w", err)
	}
	return fromConfig(cfg)
}

// ParseChartJSON builds a chart on top of the default accounts.
func ParseChartJSON(data []byte) (*Chart, error) {
	var cfg ChartConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid chart JSON: %w", err)
	}
	return fromConfig(cfg)
}

// LoadChart reads a chart file; the format follows the extension
// (.yaml/.yml or .json). An empty path returns DefaultChart.
func LoadChart(path string) (*Chart, error) {
	if path == "" {
		return DefaultChart(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseChartYAML(data)
	case ".json":
		return ParseChartJSON(data)
	}
	return nil, fmt.Errorf("unsupported chart file extension %q", filepath.Ext(path))
}

func fromConfig(cfg ChartConfig) (*Chart, error) {
	c := DefaultChart()
	groups := []struct {
		names    []string
		category ledger.Category
	}{
		{cfg.Assets, ledger.CategoryAsset},
		{cfg.Liabilities, ledger.CategoryLiability},
		{cfg.Equity, ledger.CategoryEquity},
		{cfg.Revenue, ledger.CategoryRevenue},
		{cfg.Expenses, ledger.CategoryExpense},
	}
	for _, g := range groups {
		for _, name := range g.names {
			if err := c.Add(name, g.category); err != nil {
				return nil, err
			}
		}
	}
	for _, a := range cfg.Accounts {
		cat := ledger.Category(strings.ToUpper(string(a.Category)))
		if err := c.Add(a.Name, cat); err != nil {
			return nil, err
		}
	}
	return c, nil
}
