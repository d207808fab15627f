/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Purchase and sale round trips through the router
- Error mapping (status + kind)
- Filters, reports, export/import, analyst, labels
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/books-engine/analyst"
	"github.com/warp/books-engine/bookkeeping"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/reporting"
	"github.com/warp/books-engine/store/memory"
)

// =============================================================================
// FIXTURES
// =============================================================================

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeModel struct {
	reply string
	key   string
}

func (f *fakeModel) factory(_ context.Context, apiKey, _ string) (analyst.Model, error) {
	f.key = apiKey
	return f, nil
}

func (f *fakeModel) Generate(context.Context, string, string) (string, error) {
	return f.reply, nil
}

// failingStore loads empty and refuses every save.
type failingStore struct{}

func (failingStore) Load(context.Context) (ledger.ERPData, bool, error) {
	return ledger.ERPData{}, false, nil
}

func (failingStore) Save(context.Context, ledger.ERPData) error {
	return errors.New("disk full")
}

type testEnv struct {
	router *chi.Mux
	h      *Handler
	model  *fakeModel
}

func newTestEnv(t *testing.T, policy ledger.StockPolicy, store bookkeeping.SnapshotStore) *testEnv {
	t.Helper()
	log := quietLogger()
	engine := &ledger.Engine{
		IDs:         ledger.NewSequenceSource("t"),
		Clock:       ledger.FixedClock{At: testNow},
		StockPolicy: policy,
	}
	if store == nil {
		store = memory.New()
	}
	books, err := bookkeeping.Open(context.Background(), store,
		bookkeeping.WithEngine(engine), bookkeeping.WithLogger(log))
	require.NoError(t, err)

	model := &fakeModel{reply: "## Executive Summary\nHealthy."}
	svc := &analyst.Service{NewModel: model.factory, ModelName: analyst.DefaultModel, Timeout: time.Second, Log: log}
	h := NewHandler(books, nil, svc, log)
	return &testEnv{router: NewRouter(h, nil), h: h, model: model}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// stockShop buys 10@2 and 5@5 then sells 3@8. Returns the product ID.
func (e *testEnv) stockShop(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"productName": "Widget", "sku": "W-1", "quantity": 10, "unitCost": "2", "supplier": "Acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	first := decodeBody[PurchaseResponse](t, rec)

	rec = e.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"productName": "Widget", "sku": "W-1", "quantity": "5", "unitCost": 5, "supplier": "Bolt Ltd",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = e.do(t, http.MethodPost, "/api/sales", map[string]any{
		"productId": first.Product.ID, "quantity": 3, "unitPrice": "8", "customer": "Jane",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return first.Product.ID
}

// =============================================================================
// EVENTS
// =============================================================================

func TestPurchaseAndSale(t *testing.T) {
	// GIVEN: Empty books
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	// WHEN: Two purchases and a sale are posted
	id := env.stockShop(t)

	// THEN: The product carries the weighted average cost
	rows := decodeBody[[]reporting.InventoryRow](t, env.do(t, http.MethodGet, "/api/products", nil))
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.True(t, rows[0].Quantity.Equal(dec("12")))
	assert.True(t, rows[0].AverageCost.Equal(dec("3")))
	assert.True(t, rows[0].Value.Equal(dec("36")))
	assert.Equal(t, reporting.StatusInStock, rows[0].Status)

	// AND: The trial balance balances
	tb := decodeBody[reporting.TrialBalanceReport](t, env.do(t, http.MethodGet, "/api/reports/trial-balance", nil))
	assert.True(t, tb.Balanced)
	assert.True(t, tb.TotalDebit.Equal(dec("78")), tb.TotalDebit.String())

	// AND: The journal lists eight entries
	entries := decodeBody[[]ledger.LedgerEntry](t, env.do(t, http.MethodGet, "/api/ledger", nil))
	assert.Len(t, entries, 8)
}

func TestCreateSale_Response(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	id := env.stockShop(t)

	rec := env.do(t, http.MethodPost, "/api/sales", map[string]any{"productId": id, "quantity": 2, "unitPrice": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	sale := decodeBody[SaleResponse](t, rec)
	assert.True(t, sale.Revenue.Equal(dec("20")))
	assert.True(t, sale.CostOfGoods.Equal(dec("6")))
	assert.True(t, sale.OversoldBy.IsZero())
	assert.Len(t, sale.Entries, 4)
	assert.Equal(t, ledger.TxSale, sale.Transaction.Type)
}

func TestCreateSale_Errors(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	id := env.stockShop(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
		kind   ledger.ErrorKind
	}{
		{"unknown product", map[string]any{"productId": "nope", "quantity": 1, "unitPrice": 1}, http.StatusNotFound, ledger.KindUnknownProduct},
		{"insufficient stock", map[string]any{"productId": id, "quantity": 13, "unitPrice": 1}, http.StatusConflict, ledger.KindInsufficientStock},
		{"zero quantity", map[string]any{"productId": id, "quantity": 0, "unitPrice": 1}, http.StatusBadRequest, ledger.KindInvalidAmount},
		{"negative price", map[string]any{"productId": id, "quantity": 1, "unitPrice": -1}, http.StatusBadRequest, ledger.KindInvalidAmount},
		{"missing product", map[string]any{"quantity": 1, "unitPrice": 1}, http.StatusBadRequest, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/sales", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, string(tt.kind), resp.Kind)
			assert.NotEmpty(t, resp.Error)
		})
	}

	// THEN: Nothing was applied
	rows := decodeBody[[]reporting.InventoryRow](t, env.do(t, http.MethodGet, "/api/products", nil))
	assert.True(t, rows[0].Quantity.Equal(dec("12")))
}

func TestCreateSale_InsufficientStockDetails(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	id := env.stockShop(t)

	rec := env.do(t, http.MethodPost, "/api/sales", map[string]any{"productId": id, "quantity": 20, "unitPrice": 1})
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "12", resp.Details["available"])
	assert.Equal(t, "20", resp.Details["requested"])
	assert.Equal(t, "8", resp.Details["shortfall"])
}

func TestCreateSale_AllowNegative(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyAllowNegative, nil)
	id := env.stockShop(t)

	rec := env.do(t, http.MethodPost, "/api/sales", map[string]any{"productId": id, "quantity": 15, "unitPrice": 8})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[SaleResponse](t, rec).OversoldBy.Equal(dec("3")))

	rows := decodeBody[[]reporting.InventoryRow](t, env.do(t, http.MethodGet, "/api/products", nil))
	assert.Equal(t, reporting.StatusLowStock, rows[0].Status)
}

func TestCreatePurchase_Validation(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	rec := env.do(t, http.MethodPost, "/api/purchases", map[string]any{"quantity": 1, "unitCost": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Kind    string            `json:"kind"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(KindValidation), resp.Kind)
	assert.Equal(t, "required", resp.Details["productName"])
	assert.Equal(t, "required", resp.Details["sku"])

	rec = env.do(t, http.MethodPost, "/api/purchases", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJournalEntry(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	// WHEN: Rent is paid
	rec := env.do(t, http.MethodPost, "/api/ledger/entries", map[string]any{
		"debitAccount": ledger.AccountOperatingExpense, "creditAccount": ledger.AccountCash,
		"amount": "450", "description": "Rent",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[JournalEntryResponse](t, rec)
	require.Len(t, resp.Entries, 2)
	assert.True(t, resp.Entries[0].Debit.Equal(dec("450")))
	assert.True(t, resp.Entries[1].Credit.Equal(dec("450")))

	// THEN: The income statement shows the expense
	is := decodeBody[reporting.IncomeStatement](t, env.do(t, http.MethodGet, "/api/reports/income-statement", nil))
	assert.True(t, is.NetProfit.Equal(dec("-450")), is.NetProfit.String())

	// AND: A blank account is an InvalidAccount error
	rec = env.do(t, http.MethodPost, "/api/ledger/entries", map[string]any{
		"debitAccount": "  ", "creditAccount": ledger.AccountCash, "amount": 1,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(ledger.KindInvalidAccount), decodeBody[ErrorResponse](t, rec).Kind)
}

func TestPersistFailure(t *testing.T) {
	// GIVEN: A store that cannot save
	env := newTestEnv(t, ledger.StockPolicyBlock, failingStore{})

	// WHEN: A purchase is posted
	rec := env.do(t, http.MethodPost, "/api/purchases", map[string]any{
		"productName": "Widget", "sku": "W-1", "quantity": 1, "unitCost": 1,
	})

	// THEN: 500 with the Persist kind, and the change stays in memory
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, string(bookkeeping.KindPersist), resp.Kind)
	assert.NotContains(t, resp.Error, "disk full")
	assert.Len(t, env.h.Books.Snapshot().Products, 1)
}

// =============================================================================
// HISTORY & REPORTS
// =============================================================================

func TestListTransactions_Filters(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	all := decodeBody[[]ledger.Transaction](t, env.do(t, http.MethodGet, "/api/transactions", nil))
	assert.Len(t, all, 3)

	sales := decodeBody[[]ledger.Transaction](t, env.do(t, http.MethodGet, "/api/transactions?type=sale", nil))
	require.Len(t, sales, 1)
	assert.Equal(t, "Jane", sales[0].Party)

	bySupplier := decodeBody[[]ledger.Transaction](t, env.do(t, http.MethodGet, "/api/transactions?q=bolt", nil))
	assert.Len(t, bySupplier, 1)

	sameDay := decodeBody[[]ledger.Transaction](t, env.do(t, http.MethodGet, "/api/transactions?from=2025-03-10&to=2025-03-10", nil))
	assert.Len(t, sameDay, 3)

	later := decodeBody[[]ledger.Transaction](t, env.do(t, http.MethodGet, "/api/transactions?from=2025-03-11", nil))
	assert.Empty(t, later)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions?type=REFUND", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions?from=10/03/2025", nil).Code)
}

func TestListParties(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	suppliers := decodeBody[[]string](t, env.do(t, http.MethodGet, "/api/transactions/parties?type=PURCHASE", nil))
	assert.ElementsMatch(t, []string{"Acme", "Bolt Ltd"}, suppliers)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions/parties", nil).Code)
}

func TestSellableProducts(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	assert.Empty(t, decodeBody[[]ledger.Product](t, env.do(t, http.MethodGet, "/api/products/sellable", nil)))

	env.stockShop(t)
	assert.Len(t, decodeBody[[]ledger.Product](t, env.do(t, http.MethodGet, "/api/products/sellable", nil)), 1)
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	rec := env.do(t, http.MethodGet, "/api/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[DashboardResponse](t, rec)
	assert.True(t, d.StockValue.Equal(dec("36")))
	assert.True(t, d.TotalRevenue.Equal(dec("24")))
	assert.True(t, d.NetCashFlow.Equal(dec("-21")))
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, "en", d.Language)
	assert.Contains(t, d.Formatted["stockValue"], "$")

	d = decodeBody[DashboardResponse](t, env.do(t, http.MethodGet, "/api/reports/dashboard?currency=eur&lang=fr", nil))
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, "fr", d.Language)
	assert.Contains(t, d.Formatted["totalRevenue"], "€")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/reports/dashboard?currency=XXXX", nil).Code)
}

func TestBalanceSheetAndAccounts(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	bs := decodeBody[reporting.BalanceSheet](t, env.do(t, http.MethodGet, "/api/reports/balance-sheet", nil))
	assert.True(t, bs.Balanced)

	accounts := decodeBody[[]AccountDTO](t, env.do(t, http.MethodGet, "/api/accounts", nil))
	assert.Len(t, accounts, len(ledger.PredefinedAccounts))
}

func TestWorkbook(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	rec := env.do(t, http.MethodGet, "/api/reports/workbook", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reporting.WorkbookContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

// =============================================================================
// BACKUP
// =============================================================================

func TestExportImport(t *testing.T) {
	// GIVEN: Books with history, exported
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	rec := env.do(t, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "business_manager_backup_2025-03-10.json")
	exported := rec.Body.Bytes()

	// WHEN: The backup is imported into fresh books
	other := newTestEnv(t, ledger.StockPolicyBlock, nil)
	rec = other.do(t, http.MethodPost, "/api/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Both hold the same data
	counts := decodeBody[map[string]int](t, rec)
	assert.Equal(t, map[string]int{"products": 1, "transactions": 3, "ledger": 8}, counts)
	reexported := other.do(t, http.MethodGet, "/api/export", nil)
	assert.JSONEq(t, string(exported), reexported.Body.String())
}

func TestImport_Rejected(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)
	env.stockShop(t)

	for _, body := range []string{`[]`, `{"products": []}`, `not json`} {
		rec := env.do(t, http.MethodPost, "/api/import", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, body)
		resp := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, "invalid file format", resp.Error)
		assert.Equal(t, string(bookkeeping.KindInvalidSnapshot), resp.Kind)
	}

	// THEN: The books are untouched
	assert.Len(t, env.h.Books.Snapshot().Transactions, 3)
}

// =============================================================================
// PROFILE, ANALYST, LABELS
// =============================================================================

func TestProfile(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	rec := env.do(t, http.MethodPut, "/api/profile", map[string]any{
		"name": " Ana ", "businessName": "Ana's Bakery", "location": "Lisbon",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p := decodeBody[ledger.UserProfile](t, env.do(t, http.MethodGet, "/api/profile", nil))
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, "Ana's Bakery", p.BusinessName)

	rec = env.do(t, http.MethodPut, "/api/profile", map[string]any{"name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	// WHEN: No key anywhere
	rec := env.do(t, http.MethodPost, "/api/analyst", map[string]any{"query": "How am I doing?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, analyst.MsgMissingKey, decodeBody[AnalystResponse](t, rec).Reply)

	// WHEN: The request brings a key
	rec = env.do(t, http.MethodPost, "/api/analyst", map[string]any{"query": "How am I doing?", "apiKey": "k-123"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "## Executive Summary\nHealthy.", decodeBody[AnalystResponse](t, rec).Reply)
	assert.Equal(t, "k-123", env.model.key)

	// AND: An empty query is rejected
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/analyst", map[string]any{}).Code)
}

func TestLabels(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	fr := decodeBody[LabelsResponse](t, env.do(t, http.MethodGet, "/api/labels?lang=fr", nil))
	assert.Equal(t, "fr", fr.Language)
	assert.Equal(t, "Grand Livre", fr.Labels["generalLedger"])

	req := httptest.NewRequest(http.MethodGet, "/api/labels", nil)
	req.Header.Set("Accept-Language", "es-MX,es;q=0.9")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "es", decodeBody[LabelsResponse](t, rec).Language)

	en := decodeBody[LabelsResponse](t, env.do(t, http.MethodGet, "/api/labels", nil))
	assert.Equal(t, "en", en.Language)
}

func TestRouter_IndexAndRequestID(t *testing.T) {
	env := newTestEnv(t, ledger.StockPolicyBlock, nil)

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Books Engine")

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/nothing", nil).Code)
}
