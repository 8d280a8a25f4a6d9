package repository

import (
	"context"
	"time"

	"checkout-service/internal/domain"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	// CreateOrders persists the orders and their items and decrements stock
	// for every item in one transaction. Returns domain.ErrInsufficientStock
	// if any conditional decrement touches zero rows.
	CreateOrders(ctx context.Context, orders []*domain.Order) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error)
	// MarkPaid applies the pending→completed transition. The update is
	// conditional on payment_status still being pending; applied reports
	// whether this call won the transition.
	MarkPaid(ctx context.Context, id uint64, txSignature string, amountPaid decimal.Decimal, paidAt time.Time) (applied bool, err error)
	MarkFailed(ctx context.Context, id uint64, reason string) error
}

type CartRepository interface {
	FindByCustomer(ctx context.Context, customerID uint64) ([]domain.CartItem, error)
	ClearCustomer(ctx context.Context, customerID uint64) error
}
