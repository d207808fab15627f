/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Domain types
  (ledger.Product, reporting.TrialBalanceReport, ...) are returned as-is
  where their JSON shape is already the contract; the types here cover
  request bodies and response wrappers.

NAMING CONVENTION:
  - *Request:  Request body types from clients
  - *Response: Response wrappers
  - *DTO:      Small response records

VALIDATION:
  Request structs carry go-playground/validator tags checked in
  decodeAndValidate. Amount rules (quantity > 0, price >= 0) are enforced
  by the ledger engine so they read the same from every entry point.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"
	"github.com/warp/books-engine/ledger"
	"github.com/warp/books-engine/reporting"
)

// =============================================================================
// REQUESTS
// =============================================================================

type PurchaseRequest struct {
	ProductName string          `json:"productName" validate:"required,max=200"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unitCost"`
	Supplier    string          `json:"supplier" validate:"max=200"`
}

func (r PurchaseRequest) input() ledger.PurchaseInput {
	return ledger.PurchaseInput{
		ProductName: r.ProductName, SKU: r.SKU, Quantity: r.Quantity, UnitCost: r.UnitCost, Supplier: r.Supplier,
	}
}

type SaleRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Customer  string          `json:"customer" validate:"max=200"`
}

func (r SaleRequest) input() ledger.SaleInput {
	return ledger.SaleInput{ProductID: r.ProductID, Quantity: r.Quantity, UnitPrice: r.UnitPrice, Customer: r.Customer}
}

// JournalEntryRequest leaves blank accounts to the engine, which reports
// them as InvalidAccount.
type JournalEntryRequest struct {
	DebitAccount  string          `json:"debitAccount" validate:"max=200"`
	CreditAccount string          `json:"creditAccount" validate:"max=200"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description" validate:"max=500"`
}

func (r JournalEntryRequest) input() ledger.JournalInput {
	return ledger.JournalInput{
		DebitAccount: r.DebitAccount, CreditAccount: r.CreditAccount, Amount: r.Amount, Description: r.Description,
	}
}

type ProfileRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	BusinessName string `json:"businessName" validate:"required,max=200"`
	Location     string `json:"location" validate:"max=200"`
	Role         string `json:"role,omitempty" validate:"max=100"`
	Industry     string `json:"industry,omitempty" validate:"max=100"`
}

type AnalystRequest struct {
	Query  string `json:"query" validate:"required,max=4000"`
	APIKey string `json:"apiKey,omitempty"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details any    `json:"details,omitempty"`
}

type SaleResponse struct {
	Transaction ledger.Transaction   `json:"transaction"`
	Entries     []ledger.LedgerEntry `json:"entries"`
	CostOfGoods decimal.Decimal      `json:"costOfGoods"`
	Revenue     decimal.Decimal      `json:"revenue"`
	OversoldBy  decimal.Decimal      `json:"oversoldBy"`
}

type PurchaseResponse struct {
	Transaction ledger.Transaction   `json:"transaction"`
	Entries     []ledger.LedgerEntry `json:"entries"`
	Product     ledger.Product       `json:"product"`
}

type JournalEntryResponse struct {
	TransactionID string               `json:"transactionId"`
	Entries       []ledger.LedgerEntry `json:"entries"`
}

type DashboardResponse struct {
	reporting.DashboardMetrics
	Currency  string            `json:"currency"`
	Language  string            `json:"language"`
	Formatted map[string]string `json:"formatted"`
}

type AccountDTO struct {
	Name     string          `json:"name"`
	Category ledger.Category `json:"category"`
}

type AnalystResponse struct {
	Reply string `json:"reply"`
}

type LabelsResponse struct {
	Language string            `json:"language"`
	Labels   map[string]string `json:"labels"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	NeedsBackorders bool   `json:"needsBackorders,omitempty"`
}
