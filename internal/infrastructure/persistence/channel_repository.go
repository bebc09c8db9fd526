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

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

func preloadMappings(db *gorm.DB) *gorm.DB {
	return db.Order("external_status ASC")
}

// FindByID finds a channel with its action mappings
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).
		Preload("Mappings", preloadMappings).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a channel by its unique code
func (r *GormChannelRepository) FindByCode(ctx context.Context, code string) (*integration.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).
		Preload("Mappings", preloadMappings).
		Where("code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrChannelNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all channels ordered by code
func (r *GormChannelRepository) FindAll(ctx context.Context) ([]integration.Channel, error) {
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Preload("Mappings", preloadMappings).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return channelsToDomain(rows), nil
}

// FindByIDs returns the channels with the given ids, ordered by code
func (r *GormChannelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]integration.Channel, error) {
	if len(ids) == 0 {
		return []integration.Channel{}, nil
	}
	var rows []models.ChannelModel
	if err := r.db.WithContext(ctx).
		Preload("Mappings", preloadMappings).
		Where("id IN ?", ids).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return channelsToDomain(rows), nil
}

// FindActionForStatus returns the mapping for (channel, status), matched exactly
func (r *GormChannelRepository) FindActionForStatus(ctx context.Context, channelID uuid.UUID, status string) (*integration.ChannelActionMapping, error) {
	var model models.ChannelActionMappingModel
	if err := r.db.WithContext(ctx).
		Where("channel_id = ? AND external_status = ?", channelID, status).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.NewUnknownChannelStatusError(channelID, status)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a channel and replaces its action mappings
func (r *GormChannelRepository) Save(ctx context.Context, channel *integration.Channel) error {
	model := models.ChannelModelFromDomain(channel)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Mappings").Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("channel_id = ?", channel.ID).Delete(&models.ChannelActionMappingModel{}).Error; err != nil {
			return err
		}
		if len(model.Mappings) > 0 {
			if err := tx.Create(&model.Mappings).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.Withf("Channel code %q is already used", channel.Code)
	}
	return err
}

func channelsToDomain(rows []models.ChannelModel) []integration.Channel {
	channels := make([]integration.Channel, len(rows))
	for i := range rows {
		channels[i] = *rows[i].ToDomain()
	}
	return channels
}

// Ensure GormChannelRepository implements ChannelRepository
var _ integration.ChannelRepository = (*GormChannelRepository)(nil)
