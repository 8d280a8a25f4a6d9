package http

import (
	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
)

type CheckoutRequest struct {
	Email           string                  `json:"email" binding:"required,email"`
	Currency        domain.Currency         `json:"currency" binding:"required"`
	FulfillmentType domain.FulfillmentType  `json:"fulfillmentType" binding:"required"`
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PickupNotes     string                  `json:"pickupNotes"`
}

type CheckoutOrder struct {
	ID          uint64          `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	StoreID     uint64          `json:"storeId"`
	Total       decimal.Decimal `json:"total"`
	Currency    domain.Currency `json:"currency"`
}

type CheckoutResponse struct {
	Orders []CheckoutOrder `json:"orders"`
}

type PayRequest struct {
	Signature string `json:"signature" binding:"required"`
	// Memo is set on the manual-external path and must equal the order
	// number; wallet and on-ramp payments leave it empty.
	Memo string `json:"memo"`
}

type BuildTransactionRequest struct {
	Payer string `json:"payer" binding:"required"`
}

type BuildTransactionResponse struct {
	Transaction string          `json:"transaction"`
	Total       decimal.Decimal `json:"total"`
	Currency    domain.Currency `json:"currency"`
}

type SubmitRequest struct {
	Signature string `json:"signature" binding:"required"`
}

type OnRampRequest struct {
	OrderID uint64 `json:"orderId" binding:"required"`
	Method  string `json:"method" binding:"required"`
}

type OnRampResponse struct {
	URL string `json:"url"`
}

type PriceResponse struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
}
