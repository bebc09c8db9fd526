package models

import (
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// Entity holds the id and timestamps shared by every table
type Entity struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func entityOf(e shared.BaseEntity) Entity {
	return Entity{ID: e.ID, CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt}
}

func (m Entity) entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

// Aggregate adds the version compared on every save of an aggregate root.
// A save that matches no row at the expected version is a concurrency conflict.
type Aggregate struct {
	Entity
	Version int `gorm:"not null;default:1"`
}

func aggregateOf(a shared.BaseAggregateRoot) Aggregate {
	return Aggregate{Entity: entityOf(a.BaseEntity), Version: a.Version}
}

func (m Aggregate) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.entity(), Version: m.Version}
}

// nullableString maps an empty string to NULL so unique indexes ignore it
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
