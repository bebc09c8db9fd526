// Package datascope restricts GORM queries to the channels an actor may read.
//
// The application layer stores the actor's readable channels on the context;
// repositories pick them up and add a channel predicate to their queries:
//
//	ctx = datascope.WithReadChannels(ctx, userID, channelIDs)
//	filter := datascope.NewFilterFromContext(ctx)
//	scopedDB := filter.Apply(db, "sales_orders.channel_id")
//	scopedDB.Find(&orders) // WHERE sales_orders.channel_id IN (...) is added
//
// A context without a scope, or scoped to the system actor, is not filtered.
package datascope

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataScopeContextKey is the context key for data scopes
type DataScopeContextKey string

const (
	// ReadChannelsKey is the context key for the actor's readable channels
	ReadChannelsKey DataScopeContextKey = "read_channels"
)

// scope is what the context carries
type scope struct {
	userID   uuid.UUID
	system   bool
	channels []uuid.UUID
}

// Filter applies channel scope filtering to GORM queries
type Filter struct {
	userID   uuid.UUID
	scoped   bool
	system   bool
	channels []uuid.UUID
}

// NewFilter creates a filter restricted to channels. A nil userID is the system actor.
func NewFilter(userID uuid.UUID, channels []uuid.UUID) *Filter {
	return &Filter{
		userID:   userID,
		scoped:   true,
		system:   userID == uuid.Nil,
		channels: slices.Clone(channels),
	}
}

// NewFilterFromContext creates a Filter from the scope stored on ctx.
// Without one the filter lets everything through.
func NewFilterFromContext(ctx context.Context) *Filter {
	s, ok := ctx.Value(ReadChannelsKey).(scope)
	if !ok {
		return &Filter{}
	}
	return &Filter{
		userID:   s.userID,
		scoped:   true,
		system:   s.system,
		channels: s.channels,
	}
}

// WithReadChannels stores the actor's readable channels on the context
func WithReadChannels(ctx context.Context, userID uuid.UUID, channels []uuid.UUID) context.Context {
	return context.WithValue(ctx, ReadChannelsKey, scope{
		userID:   userID,
		system:   userID == uuid.Nil,
		channels: slices.Clone(channels),
	})
}

// Apply adds the channel predicate on column
func (f *Filter) Apply(db *gorm.DB, column string) *gorm.DB {
	if !f.scoped || f.system {
		return db
	}
	if len(f.channels) == 0 {
		// No readable channel - return empty result (safety)
		return db.Where("1 = 0")
	}
	return db.Where(column+" IN ?", f.channels)
}

// ApplyToQuery returns Apply as a GORM scope function
func (f *Filter) ApplyToQuery(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return f.Apply(db, column)
	}
}

// CanRead reports whether the filter lets rows of channelID through
func (f *Filter) CanRead(channelID uuid.UUID) bool {
	if !f.scoped || f.system {
		return true
	}
	return slices.Contains(f.channels, channelID)
}

// IsScoped returns true if the filter restricts anything
func (f *Filter) IsScoped() bool {
	return f.scoped && !f.system
}

// GetUserID returns the scoped user ID
func (f *Filter) GetUserID() uuid.UUID {
	return f.userID
}

// ChannelScopeFromContext creates a GORM scope using the scope stored on ctx
func ChannelScopeFromContext(ctx context.Context, column string) func(db *gorm.DB) *gorm.DB {
	return NewFilterFromContext(ctx).ApplyToQuery(column)
}
