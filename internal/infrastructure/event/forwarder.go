package event

import (
	"context"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"go.uber.org/zap"
)

// Forwarder relays every bus event to an external publisher
type Forwarder struct {
	target shared.EventPublisher
}

// NewForwarder creates a forwarder to target
func NewForwarder(target shared.EventPublisher) *Forwarder {
	return &Forwarder{target: target}
}

// Handle publishes the event to the target
func (f *Forwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	return f.target.Publish(ctx, event)
}

// EventTypes returns nil so the forwarder receives every event
func (f *Forwarder) EventTypes() []string {
	return nil
}

// SyncAuditHandler logs channel sync outcomes
type SyncAuditHandler struct {
	logger *zap.Logger
}

// NewSyncAuditHandler creates a SyncAuditHandler
func NewSyncAuditHandler(logger *zap.Logger) *SyncAuditHandler {
	return &SyncAuditHandler{logger: logger}
}

// Handle logs the synced event
func (h *SyncAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	synced, ok := event.(*trade.SalesOrderChannelSyncedEvent)
	if !ok {
		return nil
	}
	h.logger.Info("sales order synced to channel status",
		zap.String("order_id", synced.OrderID.String()),
		zap.String("channel_id", synced.ChannelID.String()),
		zap.String("external_status", synced.ExternalStatus),
		zap.String("action", synced.Action),
		zap.String("from_status", string(synced.FromStatus)),
		zap.String("to_status", string(synced.ToStatus)),
	)
	return nil
}

// EventTypes returns the channel synced event type
func (h *SyncAuditHandler) EventTypes() []string {
	return []string{trade.EventTypeSalesOrderChannelSynced}
}
