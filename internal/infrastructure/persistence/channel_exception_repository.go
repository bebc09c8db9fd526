package persistence

import (
	"context"
	"errors"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChannelExceptionRepository implements ChannelExceptionRepository using GORM
type GormChannelExceptionRepository struct {
	db *gorm.DB
}

// NewGormChannelExceptionRepository creates a new GormChannelExceptionRepository
func NewGormChannelExceptionRepository(db *gorm.DB) *GormChannelExceptionRepository {
	return &GormChannelExceptionRepository{db: db}
}

// FindByID finds an exception by id
func (r *GormChannelExceptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.ChannelException, error) {
	var model models.ChannelExceptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrigin returns the exceptions raised against origin under channelID,
// unresolved first and oldest first within each group
func (r *GormChannelExceptionRepository) FindByOrigin(ctx context.Context, origin integration.ExceptionOrigin, channelID uuid.UUID) ([]integration.ChannelException, error) {
	var rows []models.ChannelExceptionModel
	if err := r.db.WithContext(ctx).
		Where("origin_type = ? AND origin_id = ? AND channel_id = ?", origin.Type, origin.ID, channelID).
		Order("is_resolved ASC, created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	exceptions := make([]integration.ChannelException, len(rows))
	for i := range rows {
		exceptions[i] = *rows[i].ToDomain()
	}
	return exceptions, nil
}

// Save creates or updates an exception
func (r *GormChannelExceptionRepository) Save(ctx context.Context, exception *integration.ChannelException) error {
	return r.db.WithContext(ctx).Save(models.ChannelExceptionModelFromDomain(exception)).Error
}

// Ensure GormChannelExceptionRepository implements ChannelExceptionRepository
var _ integration.ChannelExceptionRepository = (*GormChannelExceptionRepository)(nil)
