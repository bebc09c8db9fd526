package persistence

import (
	"context"

	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByOrder returns the payments of an order, oldest first
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.SalesPayment, error) {
	var rows []models.SalesPaymentModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]trade.SalesPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *trade.SalesPayment) error {
	return r.db.WithContext(ctx).Save(models.SalesPaymentModelFromDomain(payment)).Error
}

// DeleteByOrder deletes every payment of an order
func (r *GormPaymentRepository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.SalesPaymentModel{})
	return result.RowsAffected, result.Error
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ trade.PaymentRepository = (*GormPaymentRepository)(nil)
