/*
handlers.go - HTTP API handlers for the bookkeeping engine

PURPOSE:
  Exposes the books via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the bookkeeping and reporting packages.

ENDPOINTS:
  State:
    GET    /api/state                     Full snapshot
    GET    /api/profile                   User profile
    PUT    /api/profile                   Update user profile

  Inventory:
    GET    /api/products                  Inventory rows, highest value first
    GET    /api/products/sellable         Products with stock on hand

  Events:
    POST   /api/purchases                 Record a purchase
    POST   /api/sales                     Record a sale
    POST   /api/ledger/entries            Manual journal entry

  History:
    GET    /api/transactions              Filter: type, q, party, from, to
    GET    /api/transactions/parties      Suppliers or customers (type)
    GET    /api/ledger                    Journal, newest first
    GET    /api/accounts                  Chart of accounts

  Reports:
    GET    /api/reports/trial-balance
    GET    /api/reports/dashboard         Formatted with currency, lang
    GET    /api/reports/income-statement
    GET    /api/reports/balance-sheet
    GET    /api/reports/workbook          xlsx download

  Backup:
    GET    /api/export                    JSON download
    POST   /api/import                    Replace the books with a backup

  Other:
    POST   /api/analyst                   AI analysis of the books
    GET    /api/labels                    UI labels (lang or Accept-Language)
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario

REQUEST FLOW:
  1. Decode JSON body
  2. Validate struct tags
  3. Call Books (engine + persistence) or a reporting function
  4. Serialize response
  5. Map errors by kind

ERROR HANDLING:
  Errors are returned as {"error", "kind", "details"} with status:
  - 400: InvalidAmount, InvalidAccount, InvalidSnapshot, validation
  - 404: UnknownProduct
  - 409: InsufficientStock
  - 500: Everything else (including Persist)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/warp/books-engine/analyst"
	"github.com/warp/books-engine/bookkeeping"
	"github.com/warp/books-engine/factory"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/locale"
	"github.com/warp/books-engine/reporting"
)

// KindValidation marks request bodies rejected by struct validation.
const KindValidation ledger.ErrorKind = "Validation"

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 32 << 20
	dateLayout     = "2006-01-02"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Books   *bookkeeping.Books
	Chart   *factory.Chart
	Analyst *analyst.Service
	Log     logrus.FieldLogger

	// Display defaults when a request names no currency or language.
	DefaultCurrency string
	DefaultLanguage string

	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler wires a handler. A nil chart uses the built-in chart; a nil
// analyst uses Gemini with no default key.
func NewHandler(books *bookkeeping.Books, chart *factory.Chart, svc *analyst.Service, log logrus.FieldLogger) *Handler {
	if chart == nil {
		chart = factory.DefaultChart()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if svc == nil {
		svc = analyst.NewService("", analyst.DefaultModel, analyst.DefaultTimeout, log)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		Books:           books,
		Chart:           chart,
		Analyst:         svc,
		Log:             log,
		DefaultCurrency: "USD",
		DefaultLanguage: "en",
		validate:        v,
	}
}

// =============================================================================
// STATE & PROFILE
// =============================================================================

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Books.Snapshot())
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	data := h.Books.Snapshot()
	profile := ledger.UserProfile{}
	if data.UserProfile != nil {
		profile = *data.UserProfile
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	profile := ledger.UserProfile{
		Name:         strings.TrimSpace(req.Name),
		BusinessName: strings.TrimSpace(req.BusinessName),
		Location:     strings.TrimSpace(req.Location),
		Role:         req.Role,
		Industry:     req.Industry,
	}
	if err := h.Books.UpdateProfile(r.Context(), profile); err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// =============================================================================
// INVENTORY
// =============================================================================

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.Inventory(h.Books.Snapshot().Products))
}

func (h *Handler) ListSellableProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.SellableProducts(h.Books.Snapshot().Products))
}

// =============================================================================
// EVENTS
// =============================================================================

func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Books.Purchase(r.Context(), req.input())
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	resp := PurchaseResponse{Transaction: res.Transaction, Entries: res.Entries}
	if i := ledger.FindProductByID(res.Products, res.Transaction.ProductID); i >= 0 {
		resp.Product = res.Products[i]
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req SaleRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Books.Sale(r.Context(), req.input())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SaleResponse{
		Transaction: res.Transaction,
		Entries:     res.Entries,
		CostOfGoods: res.CostOfGoods,
		Revenue:     res.Revenue,
		OversoldBy:  res.OversoldBy,
	})
}

func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req JournalEntryRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.Books.ManualEntry(r.Context(), req.input())
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, JournalEntryResponse{TransactionID: res.TransactionID, Entries: res.Entries})
}

// =============================================================================
// HISTORY
// =============================================================================

// ListTransactions filters by ?type=PURCHASE|SALE&q=&party=&from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := reporting.TransactionFilter{
		Search: q.Get("q"),
		Party:  q.Get("party"),
	}
	if t := q.Get("type"); t != "" {
		typ := ledger.TransactionType(strings.ToUpper(t))
		if !typ.Valid() {
			writeError(w, http.StatusBadRequest, "type must be PURCHASE or SALE", nil)
			return
		}
		filter.Type = typ
	}

	var err error
	if filter.From, err = parseDate(q.Get("from")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date", err)
		return
	}
	if filter.To, err = parseDate(q.Get("to")); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date", err)
		return
	}

	writeJSON(w, http.StatusOK, reporting.FilterTransactions(h.Books.Snapshot().Transactions, filter))
}

func (h *Handler) ListParties(w http.ResponseWriter, r *http.Request) {
	typ := ledger.TransactionType(strings.ToUpper(r.URL.Query().Get("type")))
	if !typ.Valid() {
		writeError(w, http.StatusBadRequest, "type must be PURCHASE or SALE", nil)
		return
	}
	writeJSON(w, http.StatusOK, reporting.Parties(h.Books.Snapshot().Transactions, typ))
}

func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.LedgerNewestFirst(h.Books.Snapshot().Ledger))
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.Chart.Accounts()
	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = AccountDTO{Name: a.Name, Category: a.Category}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REPORTS
// =============================================================================

func (h *Handler) GetTrialBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.TrialBalance(h.Books.Snapshot().Ledger))
}

// GetDashboard returns the metrics plus display strings in ?currency= and
// ?lang= (or the Accept-Language header).
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(r.URL.Query().Get("currency"))
	if code == "" {
		code = h.DefaultCurrency
	}
	if _, err := locale.ParseCurrency(code); err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported currency", err)
		return
	}
	lang := h.language(r)

	m := reporting.Dashboard(h.Books.Snapshot())
	formatted := make(map[string]string, 4)
	for key, amount := range map[string]decimal.Decimal{
		"stockValue":     m.StockValue,
		"totalRevenue":   m.TotalRevenue,
		"totalPurchases": m.TotalPurchases,
		"netCashFlow":    m.NetCashFlow,
	} {
		s, err := locale.FormatAmount(amount, code, lang)
		if err != nil {
			h.writeFailure(w, err)
			return
		}
		formatted[key] = s
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		DashboardMetrics: m,
		Currency:         code,
		Language:         lang,
		Formatted:        formatted,
	})
}

func (h *Handler) GetIncomeStatement(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.NewIncomeStatement(h.Books.Snapshot().Ledger, h.Chart))
}

func (h *Handler) GetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, reporting.NewBalanceSheet(h.Books.Snapshot().Ledger, h.Chart))
}

func (h *Handler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := reporting.WriteWorkbook(&buf, h.Books.Snapshot()); err != nil {
		h.writeFailure(w, err)
		return
	}

	name := strings.TrimSuffix(bookkeeping.ExportFilename(time.Now()), ".json") + ".xlsx"
	w.Header().Set("Content-Type", reporting.WorkbookContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// =============================================================================
// BACKUP
// =============================================================================

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	raw, name, err := h.Books.Export()
	if err != nil {
		h.writeFailure(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// Import replaces the books with the backup in the request body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	if err := h.Books.Import(r.Context(), raw); err != nil {
		h.writeFailure(w, err)
		return
	}

	h.setScenario("")
	data := h.Books.Snapshot()
	writeJSON(w, http.StatusOK, map[string]int{
		"products":     len(data.Products),
		"transactions": len(data.Transactions),
		"ledger":       len(data.Ledger),
	})
}

// =============================================================================
// ANALYST & LABELS
// =============================================================================

// Analyze always answers 200; failures come back as a user-facing message.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalystRequest
	if !h.decode(w, r, &req) {
		return
	}
	reply := h.Analyst.AnalyzeWithKey(r.Context(), h.Books.Snapshot(), req.Query, req.APIKey)
	writeJSON(w, http.StatusOK, AnalystResponse{Reply: reply})
}

func (h *Handler) GetLabels(w http.ResponseWriter, r *http.Request) {
	lang := h.language(r)
	writeJSON(w, http.StatusOK, LabelsResponse{Language: lang, Labels: locale.Labels(lang)})
}

// language picks ?lang=, then Accept-Language, then the default.
func (h *Handler) language(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return locale.Match(lang)
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return locale.Match(accept)
	}
	return locale.Match(h.DefaultLanguage)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body; on failure the response is
// already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "Invalid request", err)
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Kind:    string(KindValidation),
			Details: fields,
		})
		return false
	}
	return true
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind ledger.ErrorKind) int {
	switch kind {
	case ledger.KindInvalidAmount, ledger.KindInvalidAccount, bookkeeping.KindInvalidSnapshot, KindValidation:
		return http.StatusBadRequest
	case ledger.KindUnknownProduct:
		return http.StatusNotFound
	case ledger.KindInsufficientStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure writes err with the status of its kind. Internal errors are
// logged and their text stays out of the response.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	kind := ledger.KindOf(err)
	status := statusFor(kind)

	resp := ErrorResponse{Error: err.Error(), Kind: string(kind)}
	switch {
	case kind == bookkeeping.KindInvalidSnapshot:
		resp.Error = bookkeeping.ErrInvalidSnapshot.Error()
		resp.Details = err.Error()
	case kind == bookkeeping.KindPersist:
		resp.Error = "change applied but could not be saved"
		h.Log.WithError(err).Error("persist failed")
	case status == http.StatusInternalServerError:
		resp.Error = "internal error"
		h.Log.WithError(err).Error("request failed")
	}

	var stock *ledger.InsufficientStockError
	if errors.As(err, &stock) {
		resp.Details = map[string]decimal.Decimal{
			"available": stock.Available,
			"requested": stock.Requested,
			"shortfall": stock.Shortfall,
		}
	}
	writeJSON(w, status, resp)
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
