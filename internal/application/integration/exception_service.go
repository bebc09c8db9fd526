package integration

import (
	"context"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExceptionService is the read side of channel exceptions for orders, plus the
// small reconciliation surface importers and operators use to record and resolve them.
type ExceptionService struct {
	exceptions integration.ChannelExceptionRepository
	orders     trade.SalesOrderRepository
	logger     *zap.Logger
}

// NewExceptionService creates a new ExceptionService
func NewExceptionService(exceptions integration.ChannelExceptionRepository, orders trade.SalesOrderRepository, logger *zap.Logger) *ExceptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExceptionService{exceptions: exceptions, orders: orders, logger: logger}
}

// ListExceptions returns the exceptions of an order raised in the order's own
// channel, unresolved first
func (s *ExceptionService) ListExceptions(ctx context.Context, orderID uuid.UUID) ([]ChannelExceptionResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	visible, err := s.visible(ctx, order)
	if err != nil {
		return nil, err
	}
	return ToChannelExceptionResponses(visible), nil
}

// HasUnresolvedException reports whether the order has an unresolved exception in its channel
func (s *ExceptionService) HasUnresolvedException(ctx context.Context, order *trade.SalesOrder) (bool, error) {
	visible, err := s.visible(ctx, order)
	if err != nil {
		return false, err
	}
	return integration.HasUnresolvedException(visible, order.Channel.ChannelID), nil
}

// RecordException raises an unresolved exception against an order in its current channel
func (s *ExceptionService) RecordException(ctx context.Context, orderID uuid.UUID, log string) (*ChannelExceptionResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	exception, err := integration.NewChannelException(integration.SalesOrderOrigin(order.ID), order.Channel.ChannelID, log)
	if err != nil {
		return nil, err
	}
	if err := s.exceptions.Save(ctx, exception); err != nil {
		return nil, err
	}
	s.logger.Info("channel exception recorded",
		zap.String("exception_id", exception.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("channel_id", order.Channel.ChannelID.String()))
	resp := ToChannelExceptionResponse(exception)
	return &resp, nil
}

// ResolveException flags an exception as resolved by the actor
func (s *ExceptionService) ResolveException(ctx context.Context, exceptionID, actorID uuid.UUID) (*ChannelExceptionResponse, error) {
	exception, err := s.exceptions.FindByID(ctx, exceptionID)
	if err != nil {
		return nil, err
	}
	if err := exception.Resolve(actorID); err != nil {
		return nil, err
	}
	if err := s.exceptions.Save(ctx, exception); err != nil {
		return nil, err
	}
	s.logger.Info("channel exception resolved",
		zap.String("exception_id", exception.ID.String()),
		zap.String("resolved_by", actorID.String()))
	resp := ToChannelExceptionResponse(exception)
	return &resp, nil
}

func (s *ExceptionService) visible(ctx context.Context, order *trade.SalesOrder) ([]integration.ChannelException, error) {
	all, err := s.exceptions.FindByOrigin(ctx, integration.SalesOrderOrigin(order.ID), order.Channel.ChannelID)
	if err != nil {
		return nil, err
	}
	return integration.VisibleExceptions(all, order.Channel.ChannelID), nil
}
