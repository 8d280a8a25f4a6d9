package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID  uint64          `json:"storeId" gorm:"not null;index"`
	Name     string          `json:"name" gorm:"size:255;not null"`
	ImageURL string          `json:"imageUrl" gorm:"size:512"`
	PriceUSD decimal.Decimal `json:"priceUsd" gorm:"type:decimal(24,9);not null"`
	Stock    int64           `json:"stock" gorm:"not null"`

	AllowPickup bool `json:"allowPickup" gorm:"default:false"`
	Active      bool `json:"active" gorm:"default:true"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// CartItem references live catalog rows; stock is not reserved until
// checkout decrements it.
type CartItem struct {
	ID         uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID uint64 `json:"customerId" gorm:"not null;index"`
	ProductID  uint64 `json:"productId" gorm:"not null;index"`
	Variant    string `json:"variant" gorm:"size:64"`
	Quantity   int64  `json:"quantity" gorm:"not null"`

	Product   Product   `json:"product" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
