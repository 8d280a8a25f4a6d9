package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPaid       OrderStatus = "paid"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusDisputed   OrderStatus = "disputed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type FulfillmentType string

const (
	FulfillmentShipping FulfillmentType = "shipping"
	FulfillmentPickup   FulfillmentType = "local_pickup"
)

type ShippingAddress struct {
	Name    string `json:"name" gorm:"column:ship_name;size:128"`
	Line1   string `json:"line1" gorm:"column:ship_line1;size:255"`
	Line2   string `json:"line2" gorm:"column:ship_line2;size:255"`
	City    string `json:"city" gorm:"column:ship_city;size:128"`
	State   string `json:"state" gorm:"column:ship_state;size:64"`
	Zip     string `json:"zip" gorm:"column:ship_zip;size:32"`
	Country string `json:"country" gorm:"column:ship_country;size:64"`
}

type Order struct {
	ID          uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNumber string `json:"orderNumber" gorm:"size:32;uniqueIndex;not null"`
	CustomerID  uint64 `json:"customerId" gorm:"not null;index"`
	StoreID     uint64 `json:"storeId" gorm:"not null;index"`
	Email       string `json:"email" gorm:"size:255"`

	Status          OrderStatus   `json:"status" gorm:"type:enum('pending','paid','processing','shipped','delivered','cancelled','disputed');default:'pending'"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"type:enum('pending','completed','failed');default:'pending';index"`
	PaymentCurrency Currency      `json:"paymentCurrency" gorm:"size:8;not null"`

	// Amounts are denominated in PaymentCurrency and pinned at creation
	// time from the server-side exchange rate.
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(24,9)"`
	MerchantAmount decimal.Decimal `json:"merchantAmount" gorm:"type:decimal(24,9)"`
	Total          decimal.Decimal `json:"total" gorm:"type:decimal(24,9)"`
	AmountPaid     decimal.Decimal `json:"amountPaid" gorm:"type:decimal(24,9)"`

	TxSignature   *string `json:"txSignature" gorm:"size:128;index"`
	FailureReason *string `json:"failureReason" gorm:"size:255"`

	FulfillmentType FulfillmentType `json:"fulfillmentType" gorm:"size:16;not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded"`
	PickupNotes     string          `json:"pickupNotes" gorm:"size:512"`

	TrackingNumber *string `json:"trackingNumber" gorm:"size:64"`
	Carrier        *string `json:"carrier" gorm:"size:32"`
	TrackingURL    *string `json:"trackingUrl" gorm:"size:512"`
	LabelURL       *string `json:"labelUrl" gorm:"size:512"`

	CreatedAt   time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	PaidAt      *time.Time `json:"paidAt"`
	ShippedAt   *time.Time `json:"shippedAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem is a snapshot of the product at purchase time so later catalog
// edits never alter historical orders. Rows are immutable once written.
type OrderItem struct {
	ID        uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64 `json:"orderId" gorm:"not null;index"`
	ProductID uint64 `json:"productId" gorm:"not null;index"`

	Name         string          `json:"name" gorm:"size:255;not null"`
	ImageURL     string          `json:"imageUrl" gorm:"size:512"`
	Variant      string          `json:"variant" gorm:"size:64"`
	Quantity     int64           `json:"quantity" gorm:"not null"`
	UnitPriceUSD decimal.Decimal `json:"unitPriceUsd" gorm:"type:decimal(24,9)"`
	UnitPrice    decimal.Decimal `json:"unitPrice" gorm:"type:decimal(24,9)"`
	Currency     Currency        `json:"currency" gorm:"size:8;not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
