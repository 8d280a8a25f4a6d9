package mysql

import (
	"context"

	"checkout-service/internal/domain"
	"checkout-service/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) FindByCustomer(ctx context.Context, customerID uint64) ([]domain.CartItem, error) {
	var out []domain.CartItem
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cartRepo) ClearCustomer(ctx context.Context, customerID uint64) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&domain.CartItem{}).Error
}
