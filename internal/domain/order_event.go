package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  uint64          `json:"customerId"`
	StoreID     uint64          `json:"storeId"`
	Total       decimal.Decimal `json:"total"`
	Currency    Currency        `json:"currency"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderPaidEvent struct {
	OrderID     uint64          `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	CustomerID  uint64          `json:"customerId"`
	StoreID     uint64          `json:"storeId"`
	AmountPaid  decimal.Decimal `json:"amountPaid"`
	Currency    Currency        `json:"currency"`
	TxSignature string          `json:"txSignature"`
	PaidAt      time.Time       `json:"paidAt"`
}
