package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Order creation failures.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidFulfillment = errors.New("no item in the cart supports local pickup")
	ErrBelowMinimum       = errors.New("order total is below the minimum payment amount")
)

// Chain-side failures shared by the builder, tracker and reconciliation.
var (
	ErrNoTokenAccount      = errors.New("payer has no token account for this currency")
	ErrTransactionFailed   = errors.New("transaction failed on chain")
	ErrConfirmationTimeout = errors.New("transaction not confirmed within the polling budget")
	ErrTransactionNotFound = errors.New("transaction not found on chain")
)

// Reconciliation failures.
var (
	ErrOrderAlreadyPaid = errors.New("order is already paid")
	ErrIntentExpired    = errors.New("payment window for this order has expired")
)

// InsufficientFundsError reports the payer's shortfall when building a
// payment transaction.
type InsufficientFundsError struct {
	Currency  Currency
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	shortfall := e.Required.Sub(e.Available)
	return fmt.Sprintf("insufficient funds: need %s %s more (required %s, available %s)",
		shortfall.String(), e.Currency, e.Required.String(), e.Available.String())
}

// InsufficientPaymentError rejects an underpaying transaction. There is no
// partial-credit or refund path; the order stays pending.
type InsufficientPaymentError struct {
	Currency Currency
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment of %s %s is below the order total of %s %s",
		e.Actual.String(), e.Currency, e.Expected.String(), e.Currency)
}

// MemoMismatchError prevents cross-crediting when several orders are paid
// from the same external wallet.
type MemoMismatchError struct {
	Expected string
	Actual   string
}

func (e *MemoMismatchError) Error() string {
	return fmt.Sprintf("transaction memo %q does not match order number %q", e.Actual, e.Expected)
}
