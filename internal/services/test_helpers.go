package services

import (
	"time"

	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	TestCustomerID = uint64(7)
	TestStoreID    = uint64(3)
	TestOrderID    = uint64(1)

	// Devnet fixtures; any base58 key works for service-level tests.
	TestRecipient = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	TestUSDCMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	TestSignature = "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW"
)

func CreateTestProduct(id uint64, priceUSD string, stock int64, allowPickup bool) domain.Product {
	return domain.Product{
		ID:          id,
		StoreID:     TestStoreID,
		Name:        "Test Product",
		PriceUSD:    decimal.RequireFromString(priceUSD),
		Stock:       stock,
		AllowPickup: allowPickup,
		Active:      true,
	}
}

func CreateTestCartItem(productID uint64, qty int64, priceUSD string, allowPickup bool) domain.CartItem {
	return domain.CartItem{
		ID:         productID,
		CustomerID: TestCustomerID,
		ProductID:  productID,
		Quantity:   qty,
		Product:    CreateTestProduct(productID, priceUSD, 10, allowPickup),
	}
}

func CreateTestOrder(id uint64, total string, currency domain.Currency, paymentStatus domain.PaymentStatus) *domain.Order {
	order := &domain.Order{
		ID:              id,
		OrderNumber:     "FL-TEST0001",
		CustomerID:      TestCustomerID,
		StoreID:         TestStoreID,
		Status:          domain.StatusPending,
		PaymentStatus:   paymentStatus,
		PaymentCurrency: currency,
		Subtotal:        decimal.RequireFromString(total),
		Total:           decimal.RequireFromString(total),
		FulfillmentType: domain.FulfillmentShipping,
		CreatedAt:       time.Now(),
	}
	if paymentStatus == domain.PaymentCompleted {
		now := time.Now()
		order.Status = domain.StatusPaid
		order.PaidAt = &now
		sig := TestSignature
		order.TxSignature = &sig
	}
	return order
}
