/*
errors.go - Error taxonomy for the ledger engine

PURPOSE:
  All engine errors in one place. Every failure is returned as a value;
  a failed operation never mutates the collections it was given.

ERROR KINDS:
  UnknownProduct:    sale references a product ID that does not exist
  InsufficientStock: sale quantity exceeds stock under StockPolicyBlock
  InvalidAmount:     non-positive quantity/amount, or negative price/cost
  InvalidAccount:    manual entry with a blank account label
  Unbalanced:        a transaction group whose debits differ from credits

USAGE:
  Callers branch with errors.Is on the sentinels, errors.As on the
  structured types, or KindOf for a flat classification:

    if errors.Is(err, ledger.ErrInsufficientStock) {
        var stockErr *ledger.InsufficientStockError
        errors.As(err, &stockErr)
        ...
    }

SEE ALSO:
  - engine.go: Produces these errors
  - bookkeeping/errors.go: Snapshot and persistence errors
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownProduct is returned when a sale references a missing product.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrInsufficientStock is returned when a sale exceeds available stock
	// and the engine is configured to block overselling.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidAmount is returned for non-positive quantities or amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidAccount is returned when a journal entry names no account.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrUnbalanced is returned when a transaction group does not balance.
	ErrUnbalanced = errors.New("unbalanced transaction")
)

// =============================================================================
// ERROR KIND
// =============================================================================

type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindUnknownProduct    ErrorKind = "UnknownProduct"
	KindInsufficientStock ErrorKind = "InsufficientStock"
	KindInvalidAmount     ErrorKind = "InvalidAmount"
	KindInvalidAccount    ErrorKind = "InvalidAccount"
	KindUnbalanced        ErrorKind = "Unbalanced"
	KindInternal          ErrorKind = "Internal"
)

var kindSentinels = []struct {
	kind ErrorKind
	err  error
}{
	{KindUnknownProduct, ErrUnknownProduct},
	{KindInsufficientStock, ErrInsufficientStock},
	{KindInvalidAmount, ErrInvalidAmount},
	{KindInvalidAccount, ErrInvalidAccount},
	{KindUnbalanced, ErrUnbalanced},
}

// Kinded is implemented by errors from other packages that carry a kind.
type Kinded interface {
	Kind() ErrorKind
}

// KindOf classifies err. nil maps to KindNone, anything unrecognized to
// KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownProductError names the product ID that could not be resolved.
type UnknownProductError struct {
	ProductID string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product: %q", e.ProductID)
}

func (e *UnknownProductError) Unwrap() error {
	return ErrUnknownProduct
}

// InsufficientStockError provides details about a stock shortage.
type InsufficientStockError struct {
	ProductID string
	Available decimal.Decimal
	Requested decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %s, requested %s, shortfall %s",
		e.ProductID, e.Available, e.Requested, e.Shortfall)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidAmountError names the offending field.
type InvalidAmountError struct {
	Field string
	Value decimal.Decimal
	Rule  string // e.g. "must be > 0"
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid %s %s: %s", e.Field, e.Value, e.Rule)
}

func (e *InvalidAmountError) Unwrap() error {
	return ErrInvalidAmount
}

// UnbalancedError reports the first group whose sides differ.
type UnbalancedError struct {
	TransactionID string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("transaction %s unbalanced: debit %s, credit %s",
		e.TransactionID, e.Debit, e.Credit)
}

func (e *UnbalancedError) Unwrap() error {
	return ErrUnbalanced
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidAccount) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownProduct)
}

func mustBePositive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return &InvalidAmountError{Field: field, Value: v, Rule: "must be > 0"}
	}
	return nil
}

func mustNotBeNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return &InvalidAmountError{Field: field, Value: v, Rule: "must be >= 0"}
	}
	return nil
}
