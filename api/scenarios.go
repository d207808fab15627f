/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built books that show the engine at work: a stocked shop
	with a week of sales, a shop selling ahead of deliveries, and a month
	close with manual adjustments.

AVAILABLE SCENARIOS:

	retail-shop:           Three products, a week of purchases and sales
	oversold-backorder:    Sales beyond stock, then a restock (allow_negative)
	month-end-adjustments: Capital, rent, accrued bills, credit sales

HOW SCENARIOS WORK:
 1. A private engine runs every step against an empty snapshot
 2. A stepping clock spreads the steps over the past days
 3. The finished snapshot replaces the books in one save

Because every step goes through the engine, every scenario balances.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "retail-shop"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description and a build function
 2. Use the builder steps (buy, sell, journal, nextDay)

NOTE:

	Loading a scenario replaces the current books.

SEE ALSO:
  - handlers.go: Handler, error mapping
  - ledger/engine.go: The postings each step runs
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	days  int // how far back the first step is dated
	build func(b *builder)
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "retail-shop",
			Name:        "Retail Shop",
			Description: "Stationery shop with three products and a week of sales",
			Category:    "inventory",
		},
		days:  7,
		build: buildRetailShop,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:              "oversold-backorder",
			Name:            "Oversold Backorder",
			Description:     "Sales taken before stock arrived, then a restock at a new cost",
			Category:        "inventory",
			NeedsBackorders: true,
		},
		days:  4,
		build: buildOversoldBackorder,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "month-end-adjustments",
			Name:        "Month-End Adjustments",
			Description: "Owner capital, rent, an accrued bill and a credit sale",
			Category:    "journal",
		},
		days:  5,
		build: buildMonthEnd,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	id := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(id)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario replaces the books with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}
	if s.NeedsBackorders && h.Books.StockPolicy() != ledger.StockPolicyAllowNegative {
		writeError(w, http.StatusConflict,
			fmt.Sprintf("scenario %s needs BOOKS_STOCK_POLICY=%s", s.ID, ledger.StockPolicyAllowNegative), nil)
		return
	}

	if err := h.loadScenario(r.Context(), s, time.Now().UTC()); err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetBooks clears the books.
func (h *Handler) ResetBooks(w http.ResponseWriter, r *http.Request) {
	if err := h.Books.Reset(r.Context()); err != nil {
		h.writeFailure(w, err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, s scenario, now time.Time) error {
	data, err := buildScenario(s, now)
	if err != nil {
		return fmt.Errorf("build scenario %s: %w", s.ID, err)
	}
	if err := h.Books.Replace(ctx, data); err != nil {
		return err
	}
	h.setScenario(s.ID)
	h.Log.WithField("scenario", s.ID).Info("scenario loaded")
	return nil
}

func buildScenario(s scenario, now time.Time) (ledger.ERPData, error) {
	start := now.Truncate(24*time.Hour).AddDate(0, 0, -s.days).Add(9 * time.Hour)
	clock := &stepClock{at: start, step: 15 * time.Minute}

	policy := ledger.StockPolicyBlock
	if s.NeedsBackorders {
		policy = ledger.StockPolicyAllowNegative
	}
	b := &builder{
		engine: &ledger.Engine{IDs: ledger.UUIDSource{}, Clock: clock, StockPolicy: policy},
		clock:  clock,
		data:   ledger.Empty(),
	}
	s.build(b)
	if b.err != nil {
		return ledger.ERPData{}, b.err
	}
	return b.data, nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func buildRetailShop(b *builder) {
	b.profile(ledger.UserProfile{
		Name: "Sam Rivera", BusinessName: "Corner Stationery", Location: "Portland, OR", Industry: "Retail",
	})
	b.journal(ledger.AccountCash, ledger.AccountCapital, "500", "Owner investment")
	b.buy("Notebook A5", "NB-A5", "40", "2.50", "Paper Mill Co")
	b.buy("Gel Pen", "PEN-GEL", "100", "0.80", "Ink & Co")
	b.buy("Ceramic Mug", "MUG-CER", "12", "4.00", "Potters Guild")

	b.nextDay()
	b.sell("NB-A5", "6", "4.50", "Walk-in")
	b.sell("PEN-GEL", "20", "1.50", "Walk-in")

	b.nextDay()
	b.sell("MUG-CER", "3", "9.00", "Lena Ortiz")
	b.sell("NB-A5", "10", "4.25", "Hillside School")

	b.nextDay()
	b.buy("Notebook A5", "NB-A5", "30", "2.20", "Paper Mill Co")
	b.sell("PEN-GEL", "35", "1.40", "Hillside School")

	b.nextDay()
	b.sell("MUG-CER", "8", "9.00", "Walk-in")
	b.journal(ledger.AccountOperatingExpense, ledger.AccountCash, "120", "Shop rent")

	b.nextDay()
	b.sell("NB-A5", "12", "4.50", "Walk-in")
	b.sell("PEN-GEL", "25", "1.50", "Lena Ortiz")

	b.nextDay()
	b.sell("NB-A5", "5", "4.50", "Walk-in")
}

func buildOversoldBackorder(b *builder) {
	b.profile(ledger.UserProfile{
		Name: "Amal Haddad", BusinessName: "Haddad Electronics", Location: "Casablanca", Industry: "Electronics",
	})
	b.buy("USB-C Charger", "CHG-65W", "5", "12.00", "Volt Supply")

	b.nextDay()
	b.sell("CHG-65W", "4", "25.00", "Karim B.")
	b.sell("CHG-65W", "4", "25.00", "Office Hub")

	b.nextDay()
	b.sell("CHG-65W", "2", "24.00", "Walk-in")

	b.nextDay()
	b.buy("USB-C Charger", "CHG-65W", "20", "13.50", "Volt Supply")
	b.sell("CHG-65W", "3", "25.00", "Walk-in")
}

func buildMonthEnd(b *builder) {
	b.profile(ledger.UserProfile{
		Name: "Jo Becker", BusinessName: "Becker Coffee Roasters", Location: "Lyon", Industry: "Food & Beverage",
	})
	b.journal(ledger.AccountCash, ledger.AccountCapital, "2000", "Owner capital injection")
	b.buy("House Blend 1kg", "HB-1KG", "50", "9.00", "Green Bean Traders")
	b.buy("Espresso 250g", "ESP-250", "80", "3.20", "Green Bean Traders")

	b.nextDay()
	b.sell("HB-1KG", "15", "18.00", "Cafe Lumiere")
	b.sell("ESP-250", "30", "6.50", "Walk-in")

	b.nextDay()
	b.journal(ledger.AccountOperatingExpense, ledger.AccountCash, "450", "Roastery rent")
	b.journal(ledger.AccountReceivable, ledger.AccountSalesRevenue, "240", "Catering invoice, net 30")

	b.nextDay()
	b.sell("HB-1KG", "10", "17.50", "Bistro Nord")
	b.journal(ledger.AccountOperatingExpense, ledger.AccountPayable, "85", "Electricity bill accrued")

	b.nextDay()
	b.journal(ledger.AccountCash, ledger.AccountReceivable, "240", "Catering invoice paid")
	b.journal(ledger.AccountPayable, ledger.AccountCash, "85", "Electricity bill paid")
}

// =============================================================================
// BUILDER
// =============================================================================

// stepClock advances by step on every reading.
type stepClock struct {
	at   time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.at
	c.at = c.at.Add(c.step)
	return now
}

// builder applies steps to data; the first error stops the rest.
type builder struct {
	engine *ledger.Engine
	clock  *stepClock
	data   ledger.ERPData
	err    error
}

func (b *builder) nextDay() {
	b.clock.at = b.clock.at.Truncate(24*time.Hour).Add(24*time.Hour + 9*time.Hour)
}

func (b *builder) profile(p ledger.UserProfile) {
	b.data = b.data.WithProfile(p)
}

func (b *builder) buy(name, sku, qty, unitCost, supplier string) {
	if b.err != nil {
		return
	}
	res, err := b.engine.RecordPurchase(ledger.PurchaseInput{
		ProductName: name,
		SKU:         sku,
		Quantity:    decimal.RequireFromString(qty),
		UnitCost:    decimal.RequireFromString(unitCost),
		Supplier:    supplier,
	}, b.data.Products)
	if err != nil {
		b.err = err
		return
	}
	b.data = b.data.WithPurchase(res)
}

func (b *builder) sell(sku, qty, unitPrice, customer string) {
	if b.err != nil {
		return
	}
	i := ledger.FindProductBySKU(b.data.Products, sku)
	if i < 0 {
		b.err = &ledger.UnknownProductError{ProductID: sku}
		return
	}
	res, err := b.engine.RecordSale(ledger.SaleInput{
		ProductID: b.data.Products[i].ID,
		Quantity:  decimal.RequireFromString(qty),
		UnitPrice: decimal.RequireFromString(unitPrice),
		Customer:  customer,
	}, b.data.Products)
	if err != nil {
		b.err = err
		return
	}
	b.data = b.data.WithSale(res)
}

func (b *builder) journal(debit, credit, amount, description string) {
	if b.err != nil {
		return
	}
	res, err := b.engine.RecordManualJournalEntry(ledger.JournalInput{
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        decimal.RequireFromString(amount),
		Description:   description,
	})
	if err != nil {
		b.err = err
		return
	}
	b.data = b.data.WithJournal(res)
}
