/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     logrus request log (method, path, status, duration)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/state, /api/profile  Snapshot and profile
  /api/products/*           Inventory
  /api/purchases, /sales    Events
  /api/transactions/*       History
  /api/ledger/*             Journal
  /api/reports/*            Reports
  /api/export, /api/import  Backups
  /api/analyst              AI analyst
  /api/scenarios/*          Demo scenarios
  /                         Endpoint index

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured. An empty
// origins list allows any origin.
func NewRouter(h *Handler, origins []string) *chi.Mux {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/profile", h.GetProfile)
		r.Put("/profile", h.UpdateProfile)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/sellable", h.ListSellableProducts)
		})

		r.Post("/purchases", h.CreatePurchase)
		r.Post("/sales", h.CreateSale)

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Get("/parties", h.ListParties)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", h.ListLedger)
			r.Post("/entries", h.CreateJournalEntry)
		})
		r.Get("/accounts", h.ListAccounts)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", h.GetTrialBalance)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/income-statement", h.GetIncomeStatement)
			r.Get("/balance-sheet", h.GetBalanceSheet)
			r.Get("/workbook", h.GetWorkbook)
		})

		r.Get("/export", h.Export)
		r.Post("/import", h.Import)

		r.Post("/analyst", h.Analyze)
		r.Get("/labels", h.GetLabels)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetBooks)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Books Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Books Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/state">/api/state</a> - Full snapshot</li>
<li><a href="/api/products">/api/products</a> - Inventory</li>
<li><a href="/api/ledger">/api/ledger</a> - General journal</li>
<li><a href="/api/reports/trial-balance">/api/reports/trial-balance</a> - Trial balance</li>
<li><a href="/api/reports/dashboard">/api/reports/dashboard</a> - Dashboard</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}

// RequestLogger logs one line per request through log.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			defer func() {
				fields := logrus.Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(started).Milliseconds(),
					"remote":      r.RemoteAddr,
				}
				if id := middleware.GetReqID(r.Context()); id != "" {
					fields["request_id"] = id
				}
				entry := log.WithFields(fields)
				if ww.Status() >= http.StatusInternalServerError {
					entry.Warn("request")
					return
				}
				entry.Info("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
