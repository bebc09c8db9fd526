// Package event carries domain events from the application layer to in-process
// handlers and, when configured, to kafka.
package event

import (
	"context"
	"fmt"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewEventBus builds the in-memory bus with the audit handler subscribed and,
// for the kafka publisher, a forwarder to the configured topic.
// The returned stop function stops the bus and closes the kafka writer.
func NewEventBus(cfg config.EventConfig, logger *zap.Logger) (shared.EventBus, func(context.Context) error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := NewDispatcher(logger.Named("event_bus"))
	bus.Subscribe(NewSyncAuditHandler(logger))

	var kafkaPublisher *KafkaPublisher
	switch cfg.Publisher {
	case config.PublisherMemory, "":
	case config.PublisherKafka:
		writer := NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaPublisher = NewKafkaPublisher(writer, cfg.WriteTimeout, logger.Named("kafka"))
		bus.Subscribe(NewForwarder(kafkaPublisher))
		logger.Info("Forwarding domain events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	default:
		return nil, nil, fmt.Errorf("unknown event publisher %q", cfg.Publisher)
	}

	stop := func(ctx context.Context) error {
		if err := bus.Stop(ctx); err != nil {
			return err
		}
		if kafkaPublisher != nil {
			return kafkaPublisher.Close()
		}
		return nil
	}
	return bus, stop, nil
}
