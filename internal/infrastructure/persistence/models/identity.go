package models

import (
	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/google/uuid"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	Aggregate
	Username         string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	CurrentChannelID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Channel access sets must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot:     m.root(),
		Username:              m.Username,
		CurrentChannelID:      m.CurrentChannelID,
		AllowedCreateChannels: make([]uuid.UUID, 0),
		AllowedReadChannels:   make([]uuid.UUID, 0),
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.Aggregate = aggregateOf(u.BaseAggregateRoot)
	m.Username = u.Username
	m.CurrentChannelID = u.CurrentChannelID
}

// UserChannelAccessModel is one (user, channel, access) grant.
type UserChannelAccessModel struct {
	UserID    uuid.UUID              `gorm:"type:uuid;primary_key"`
	ChannelID uuid.UUID              `gorm:"type:uuid;primary_key"`
	Access    identity.ChannelAccess `gorm:"type:varchar(10);primary_key"`
}

// TableName returns the table name for GORM
func (UserChannelAccessModel) TableName() string {
	return "user_channel_access"
}

// AccessRowsFromDomain flattens the user's access sets into rows
func AccessRowsFromDomain(u *identity.User) []UserChannelAccessModel {
	rows := make([]UserChannelAccessModel, 0, len(u.AllowedCreateChannels)+len(u.AllowedReadChannels))
	for _, id := range u.AllowedCreateChannels {
		rows = append(rows, UserChannelAccessModel{UserID: u.ID, ChannelID: id, Access: identity.ChannelAccessCreate})
	}
	for _, id := range u.AllowedReadChannels {
		rows = append(rows, UserChannelAccessModel{UserID: u.ID, ChannelID: id, Access: identity.ChannelAccessRead})
	}
	return rows
}
