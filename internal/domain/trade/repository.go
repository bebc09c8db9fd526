package trade

import (
	"context"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderFilter defines filtering options for sales order queries
type SalesOrderFilter struct {
	shared.ListQuery
	ChannelID *uuid.UUID
	PartyID   *uuid.UUID
	Status    *OrderStatus
	// HasChannelException splits orders on unresolved exceptions in their own channel.
	// true: at least one unresolved. false: none, or only resolved ones.
	HasChannelException *bool
}

// SalesOrderRepository defines the interface for sales order persistence
type SalesOrderRepository interface {
	// FindByID finds a sales order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByChannelIdentifier finds the order a channel knows under identifier
	FindByChannelIdentifier(ctx context.Context, channelID uuid.UUID, identifier string) (*SalesOrder, error)

	// FindAll finds sales orders matching the filter and returns the total count
	FindAll(ctx context.Context, filter SalesOrderFilter) ([]SalesOrder, int64, error)

	// Create inserts a new order with its lines.
	// A used (channel, channel identifier) pair fails with ErrDuplicateChannelIdentifier.
	Create(ctx context.Context, order *SalesOrder) error

	// Save updates an order and its lines using optimistic locking
	Save(ctx context.Context, order *SalesOrder) error

	// StoreCache writes only the cached display fields of an order
	StoreCache(ctx context.Context, order *SalesOrder) error

	// Delete deletes an order and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateOrderNumber returns the next free order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// PaymentRepository defines the interface for sales payment persistence
type PaymentRepository interface {
	// FindByOrder returns the payments of an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]SalesPayment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *SalesPayment) error

	// DeleteByOrder deletes every payment of an order and returns how many were removed
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}
