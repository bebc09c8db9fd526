package trade

import (
	"context"
	"errors"
	"time"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/lock"
	"github.com/erp/channelsync/internal/infrastructure/logger"
	"github.com/erp/channelsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds concurrent syncs when the caller gives no limit
const DefaultBatchConcurrency = 4

// ExceptionChecker answers whether an order has unresolved channel exceptions
type ExceptionChecker interface {
	HasUnresolvedException(ctx context.Context, order *trade.SalesOrder) (bool, error)
}

// ChannelSyncService drives orders to the state their channel reports
type ChannelSyncService struct {
	txScope     TransactionScope
	orders      trade.SalesOrderRepository
	exceptions  ExceptionChecker
	locker      shared.Locker
	lockWait    time.Duration
	concurrency int
	publisher   shared.EventPublisher
	metrics     *telemetry.ChannelSyncMetrics
	logger      *zap.Logger
}

// ChannelSyncOption configures a ChannelSyncService
type ChannelSyncOption func(*ChannelSyncService)

// WithLockWait sets how long a sync waits for the per-order lock
func WithLockWait(d time.Duration) ChannelSyncOption {
	return func(s *ChannelSyncService) {
		s.lockWait = d
	}
}

// WithBatchConcurrency sets the default batch concurrency
func WithBatchConcurrency(n int) ChannelSyncOption {
	return func(s *ChannelSyncService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithEventPublisher publishes the order's domain events after each committed sync
func WithEventPublisher(p shared.EventPublisher) ChannelSyncOption {
	return func(s *ChannelSyncService) {
		s.publisher = p
	}
}

// WithSyncMetrics records sync counters and durations
func WithSyncMetrics(m *telemetry.ChannelSyncMetrics) ChannelSyncOption {
	return func(s *ChannelSyncService) {
		s.metrics = m
	}
}

// NewChannelSyncService creates a new ChannelSyncService
func NewChannelSyncService(
	txScope TransactionScope,
	orders trade.SalesOrderRepository,
	exceptions ExceptionChecker,
	locker shared.Locker,
	log *zap.Logger,
	opts ...ChannelSyncOption,
) *ChannelSyncService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ChannelSyncService{
		txScope:     txScope,
		orders:      orders,
		exceptions:  exceptions,
		locker:      locker,
		lockWait:    5 * time.Second,
		concurrency: DefaultBatchConcurrency,
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncToChannelState applies the action mapped to externalStatus on the order's
// channel. An unmapped status fails with UNKNOWN_CHANNEL_STATUS before anything
// is written. Calls for the same order are serialized.
func (s *ChannelSyncService) SyncToChannelState(ctx context.Context, orderID uuid.UUID, externalStatus string) (_ *SyncResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "channel_sync", "sync",
		telemetry.AttrOrderID.String(orderID.String()),
		telemetry.AttrExternalStatus.String(externalStatus))
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	result := &SyncResult{OrderID: orderID, ExternalStatus: externalStatus}
	err = s.syncLocked(ctx, orderID, externalStatus, result)

	s.metrics.RecordSync(ctx, result.Action, err, time.Since(start))
	if err != nil {
		logger.For(ctx, s.logger).Warn("channel sync failed",
			zap.String("order_id", orderID.String()),
			zap.String("external_status", externalStatus),
			zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		telemetry.AttrAction.String(result.Action),
		telemetry.AttrFromStatus.String(string(result.FromStatus)),
		telemetry.AttrToStatus.String(string(result.ToStatus)))
	logger.For(ctx, s.logger).Info("order synced to channel state",
		zap.String("order_id", orderID.String()),
		zap.String("external_status", externalStatus),
		zap.String("action", result.Action),
		zap.String("from_status", string(result.FromStatus)),
		zap.String("to_status", string(result.ToStatus)))
	return result, nil
}

func (s *ChannelSyncService) syncLocked(ctx context.Context, orderID uuid.UUID, externalStatus string, result *SyncResult) error {
	unlock, err := s.locker.Acquire(ctx, lock.OrderKey(orderID), s.lockWait)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.For(ctx, s.logger).Warn("failed to release order lock",
				zap.String("order_id", orderID.String()),
				zap.Error(err))
		}
	}()

	var order *trade.SalesOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.SalesOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		mapping, err := repos.Channels().FindActionForStatus(ctx, order.Channel.ChannelID, externalStatus)
		if err != nil {
			return err
		}

		result.Action = string(mapping.Action)
		result.FromStatus = order.Status
		if err := s.apply(ctx, repos, order, mapping); err != nil {
			return err
		}
		order.RecordChannelSync(externalStatus, result.Action, result.FromStatus)
		result.ToStatus = order.Status
		return nil
	})
	if err != nil {
		return err
	}

	if result.ToStatus != result.FromStatus {
		s.metrics.RecordTransition(ctx, string(result.ToStatus))
	}
	s.publishEvents(ctx, order)
	return nil
}

func (s *ChannelSyncService) apply(ctx context.Context, repos TransactionalRepositories, order *trade.SalesOrder, mapping *integration.ChannelActionMapping) error {
	orders := repos.SalesOrders()

	if order.IsDraft() {
		if err := order.SetFulfillmentMethods(mapping.InvoiceMethod, mapping.ShipmentMethod); err != nil {
			return err
		}
		if err := orders.Save(ctx, order); err != nil {
			return err
		}
	}

	switch mapping.Action {
	case integration.ActionProcessManually, integration.ActionProcessAutomatically:
		before := order.Status
		if order.Status == trade.OrderStatusDraft {
			if err := order.Quote(); err != nil {
				return err
			}
		}
		if order.Status == trade.OrderStatusQuotation {
			if err := order.Confirm(); err != nil {
				return err
			}
		}
		if mapping.Action == integration.ActionProcessAutomatically && order.Status == trade.OrderStatusConfirmed {
			if err := order.Process(); err != nil {
				return err
			}
		}
		if order.Status != before {
			return orders.Save(ctx, order)
		}

	case integration.ActionImportAsPast:
		if !order.IsDraft() {
			return nil
		}
		removed, err := repos.Payments().DeleteByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := order.ForceDone(); err != nil {
			return err
		}
		if err := orders.Save(ctx, order); err != nil {
			return err
		}
		order.RefreshCache()
		if err := orders.StoreCache(ctx, order); err != nil {
			return err
		}
		logger.For(ctx, s.logger).Info("order imported as past",
			zap.String("order_id", order.ID.String()),
			zap.Int64("payments_removed", removed))
	}
	return nil
}

func (s *ChannelSyncService) publishEvents(ctx context.Context, order *trade.SalesOrder) {
	events := order.GetDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		order.ClearDomainEvents()
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.For(ctx, s.logger).Error("failed to publish sync events",
			zap.String("order_id", order.ID.String()),
			zap.Int("events", len(events)),
			zap.Error(err))
	}
	order.ClearDomainEvents()
}

// SyncBatch syncs several orders concurrently, at most concurrency at a time
// (the service default when concurrency <= 0). Per-order failures are reported
// in the result and never abort the other orders.
//
// In strict mode every order is checked for unresolved channel exceptions first;
// if any has one, nothing is synced and a CHANNEL_EXCEPTION error lists them.
func (s *ChannelSyncService) SyncBatch(ctx context.Context, requests []SyncRequest, strict bool, concurrency int) (_ *BatchSyncResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "channel_sync", "batch",
		telemetry.AttrBatchSize.Int(len(requests)),
		telemetry.AttrBatchStrict.Bool(strict))
	defer func() { telemetry.EndSpan(span, err) }()

	if strict {
		if err := s.checkExceptions(ctx, requests); err != nil {
			return nil, err
		}
	}

	if concurrency <= 0 {
		concurrency = s.concurrency
	}
	results := make([]SyncResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, req := range requests {
		g.Go(func() error {
			res, err := s.SyncToChannelState(gctx, req.OrderID, req.Status)
			if err != nil {
				results[i] = failedResult(req, err)
				return nil
			}
			results[i] = *res
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchSyncResult{Results: results}
	for _, r := range results {
		if r.Failed() {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}
	span.SetAttributes(
		telemetry.AttrBatchSucceeded.Int(batch.Succeeded),
		telemetry.AttrBatchFailed.Int(batch.Failed))
	logger.For(ctx, s.logger).Info("channel sync batch finished",
		zap.Int("orders", len(requests)),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed),
		zap.Bool("strict", strict))
	return batch, nil
}

// checkExceptions fails with a ChannelExceptionError when any requested order has
// an unresolved exception. Orders that cannot be found are left to fail on sync.
func (s *ChannelSyncService) checkExceptions(ctx context.Context, requests []SyncRequest) error {
	var (
		ids   []uuid.UUID
		names []string
		seen  = make(map[uuid.UUID]struct{}, len(requests))
	)
	for _, req := range requests {
		if _, ok := seen[req.OrderID]; ok {
			continue
		}
		seen[req.OrderID] = struct{}{}

		order, err := s.orders.FindByID(ctx, req.OrderID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		blocked, err := s.exceptions.HasUnresolvedException(ctx, order)
		if err != nil {
			return err
		}
		if blocked {
			ids = append(ids, order.ID)
			names = append(names, order.OrderNumber)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	s.metrics.RecordBatchBlocked(ctx)
	logger.For(ctx, s.logger).Warn("strict batch blocked by unresolved channel exceptions",
		zap.Strings("orders", names))
	return integrationapp.NewChannelExceptionError(ids, names)
}

func failedResult(req SyncRequest, err error) SyncResult {
	return SyncResult{
		OrderID:        req.OrderID,
		ExternalStatus: req.Status,
		Error:          err.Error(),
		ErrorCode:      shared.Code(err),
	}
}
