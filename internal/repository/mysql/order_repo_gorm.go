package mysql

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// CreateOrders decrements stock and inserts the orders in one transaction.
// The decrement is a single conditional UPDATE so two checkouts racing the
// last unit cannot both succeed.
func (r *orderRepo) CreateOrders(ctx context.Context, orders []*domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, order := range orders {
			for _, item := range order.Items {
				res := tx.Model(&domain.Product{}).
					Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
					UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: product %d", domain.ErrInsufficientStock, item.ProductID)
				}
			}
		}
		for _, order := range orders {
			if err := tx.Create(order).Error; err != nil {
				log.Printf("order create error: %v", err)
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID uint64) ([]domain.Order, error) {
	var out []domain.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// MarkPaid is conditional on the order still being payment-pending, which
// serializes concurrent reconciliation attempts at the database.
func (r *orderRepo) MarkPaid(ctx context.Context, id uint64, txSignature string, amountPaid decimal.Decimal, paidAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status = ?", id, domain.PaymentPending).
		Updates(map[string]any{
			"payment_status": domain.PaymentCompleted,
			"status":         domain.StatusPaid,
			"tx_signature":   txSignature,
			"amount_paid":    amountPaid,
			"paid_at":        paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) MarkFailed(ctx context.Context, id uint64, reason string) error {
	return r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status = ?", id, domain.PaymentPending).
		Updates(map[string]any{
			"payment_status": domain.PaymentFailed,
			"failure_reason": reason,
		}).Error
}
