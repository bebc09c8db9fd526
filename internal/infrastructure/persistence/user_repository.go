package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID with its channel access sets
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withAccess(ctx, &model)
}

// FindByUsername finds a user by username, case-insensitively
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.withAccess(ctx, &model)
}

// Save creates or updates a user and replaces its channel access rows
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := &models.UserModel{}
	model.FromDomain(user)
	rows := models.AccessRowsFromDomain(user)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserChannelAccessModel{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists.Withf("Username %q is already taken", user.Username)
	}
	return err
}

// AllowedCreateChannels returns the channels the user may create orders under
func (r *GormUserRepository) AllowedCreateChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.channelsWithAccess(ctx, userID, identity.ChannelAccessCreate)
}

// AllowedReadChannels returns the channels the user may read orders from
func (r *GormUserRepository) AllowedReadChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.channelsWithAccess(ctx, userID, identity.ChannelAccessRead)
}

func (r *GormUserRepository) channelsWithAccess(ctx context.Context, userID uuid.UUID, access identity.ChannelAccess) ([]uuid.UUID, error) {
	var rows []models.UserChannelAccessModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND access = ?", userID, access).
		Order("channel_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ChannelID
	}
	return ids, nil
}

func (r *GormUserRepository) withAccess(ctx context.Context, model *models.UserModel) (*identity.User, error) {
	user := model.ToDomain()
	var rows []models.UserChannelAccessModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", model.ID).
		Order("channel_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch row.Access {
		case identity.ChannelAccessCreate:
			user.AllowedCreateChannels = append(user.AllowedCreateChannels, row.ChannelID)
		case identity.ChannelAccessRead:
			user.AllowedReadChannels = append(user.AllowedReadChannels, row.ChannelID)
		}
	}
	return user, nil
}

// Ensure GormUserRepository implements UserRepository
var _ identity.UserRepository = (*GormUserRepository)(nil)
