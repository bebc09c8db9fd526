package trade

import (
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderQuoted         = "SalesOrderQuoted"
	EventTypeSalesOrderConfirmed      = "SalesOrderConfirmed"
	EventTypeSalesOrderProcessing     = "SalesOrderProcessing"
	EventTypeSalesOrderImportedAsPast = "SalesOrderImportedAsPast"
	EventTypeSalesOrderCancelled      = "SalesOrderCancelled"
	EventTypeSalesOrderChannelSynced  = "SalesOrderChannelSynced"
)

// SalesOrderStatusChangedEvent is raised on every lifecycle transition.
// The event type tells which transition happened.
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID   `json:"order_id"`
	OrderNumber       string      `json:"order_number"`
	ChannelID         uuid.UUID   `json:"channel_id"`
	ChannelIdentifier string      `json:"channel_identifier,omitempty"`
	FromStatus        OrderStatus `json:"from_status"`
	ToStatus          OrderStatus `json:"to_status"`
}

// NewSalesOrderStatusChangedEvent creates a status change event of the given type
func NewSalesOrderStatusChangedEvent(eventType string, order *SalesOrder, from OrderStatus) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(eventType, AggregateTypeSalesOrder, order.ID),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		ChannelID:         order.Channel.ChannelID,
		ChannelIdentifier: order.Channel.Identifier,
		FromStatus:        from,
		ToStatus:          order.Status,
	}
}

// SalesOrderChannelSyncedEvent is raised once per synchronization call,
// whether or not the status changed
type SalesOrderChannelSyncedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID   `json:"order_id"`
	ChannelID      uuid.UUID   `json:"channel_id"`
	ExternalStatus string      `json:"external_status"`
	Action         string      `json:"action"`
	FromStatus     OrderStatus `json:"from_status"`
	ToStatus       OrderStatus `json:"to_status"`
}

// NewSalesOrderChannelSyncedEvent creates a new SalesOrderChannelSyncedEvent
func NewSalesOrderChannelSyncedEvent(order *SalesOrder, externalStatus, action string, from OrderStatus) *SalesOrderChannelSyncedEvent {
	return &SalesOrderChannelSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderChannelSynced, AggregateTypeSalesOrder, order.ID),
		OrderID:         order.ID,
		ChannelID:       order.Channel.ChannelID,
		ExternalStatus:  externalStatus,
		Action:          action,
		FromStatus:      from,
		ToStatus:        order.Status,
	}
}
