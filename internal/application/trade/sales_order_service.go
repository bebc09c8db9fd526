package trade

import (
	"context"
	"errors"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessPolicy decides which channel an actor's orders land in and whether the
// actor may create under it
type AccessPolicy interface {
	LoadActor(ctx context.Context, userID uuid.UUID) (*identity.User, error)
	DefaultChannel(actor *identity.User, explicit *uuid.UUID) (uuid.UUID, error)
	CheckCreateAccess(ctx context.Context, actor *identity.User, orders []*trade.SalesOrder, silent bool) ([]uuid.UUID, error)
	CheckSelectable(actor *identity.User, channelID uuid.UUID, existingOrder bool) error
}

// ChannelDirectory provides channel attributes needed when building orders
type ChannelDirectory interface {
	GetDefaults(ctx context.Context, channelID uuid.UUID) (trade.ChannelDefaults, error)
	ChannelTypes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// SalesOrderService handles creation, duplication and reads of channel orders
type SalesOrderService struct {
	txScope  TransactionScope
	orders   trade.SalesOrderRepository
	access   AccessPolicy
	channels ChannelDirectory
	logger   *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	txScope TransactionScope,
	orders trade.SalesOrderRepository,
	access AccessPolicy,
	channels ChannelDirectory,
	logger *zap.Logger,
) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{
		txScope:  txScope,
		orders:   orders,
		access:   access,
		channels: channels,
		logger:   logger,
	}
}

// CreateOrders creates a batch of orders in one transaction.
// Orders without a channel get the actor's default channel, and channel defaults
// are applied to every order. Channel access is checked after the commit; any
// violation is reported in the result and the orders are kept.
func (s *SalesOrderService) CreateOrders(ctx context.Context, actorID uuid.UUID, req CreateSalesOrdersRequest) (_ *CreateSalesOrdersResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "create",
		telemetry.AttrBatchSize.Int(len(req.Orders)))
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.access.LoadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	channelIDs := make([]uuid.UUID, len(req.Orders))
	defaults := make(map[uuid.UUID]trade.ChannelDefaults)
	for i, input := range req.Orders {
		channelID, err := s.resolveChannel(actor, input.ChannelID, req.ContextChannelID)
		if err != nil {
			return nil, err
		}
		channelIDs[i] = channelID
		if _, ok := defaults[channelID]; !ok {
			d, err := s.channels.GetDefaults(ctx, channelID)
			if err != nil {
				return nil, err
			}
			defaults[channelID] = d
		}
	}

	created := make([]*trade.SalesOrder, 0, len(req.Orders))
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i, input := range req.Orders {
			order, err := s.buildOrder(ctx, repos.SalesOrders(), input, channelIDs[i], defaults[channelIDs[i]])
			if err != nil {
				return err
			}
			if err := repos.SalesOrders().Create(ctx, order); err != nil {
				return err
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CreateSalesOrdersResult{}
	violations, err := s.access.CheckCreateAccess(ctx, actor, created, false)
	if len(violations) > 0 || err != nil {
		result.AccessViolations = violations
		if err != nil {
			result.AccessError = err.Error()
		}
		s.logger.Warn("orders created under channels the actor cannot create in",
			zap.String("actor", actor.Username),
			zap.Int("violations", len(violations)),
			zap.Error(err))
	}

	result.Orders, err = s.toResponses(ctx, created)
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales orders created",
		zap.String("actor", actor.Username),
		zap.Int("orders", len(created)))
	return result, nil
}

func (s *SalesOrderService) resolveChannel(actor *identity.User, channelID, contextChannelID *uuid.UUID) (uuid.UUID, error) {
	if channelID != nil && *channelID != uuid.Nil {
		return *channelID, nil
	}
	return s.access.DefaultChannel(actor, contextChannelID)
}

func (s *SalesOrderService) buildOrder(ctx context.Context, orders trade.SalesOrderRepository, input CreateSalesOrderRequest, channelID uuid.UUID, defaults trade.ChannelDefaults) (*trade.SalesOrder, error) {
	number, err := orders.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}
	order, err := trade.NewSalesOrder(number, input.PartyID, trade.NewChannelContext(channelID, input.ChannelIdentifier))
	if err != nil {
		return nil, err
	}
	if err := order.SetParty(input.PartyID, input.PartyPriceListID, input.InvoiceAddress); err != nil {
		return nil, err
	}
	if err := order.ApplyChannelDefaults(defaults); err != nil {
		return nil, err
	}
	for _, line := range input.Lines {
		if _, err := order.AddLine(line.ProductID, line.ProductName, line.Quantity, line.UnitPrice, line.ChannelIdentifier); err != nil {
			return nil, err
		}
	}
	order.RefreshCache()
	return order, nil
}

// CopyOrders duplicates orders as fresh drafts without channel identifiers,
// exceptions or payments. A copy whose source channel the actor cannot create
// under is moved to the actor's default channel and takes that channel's defaults.
func (s *SalesOrderService) CopyOrders(ctx context.Context, actorID uuid.UUID, req CopySalesOrdersRequest) (_ []SalesOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "copy",
		telemetry.AttrBatchSize.Int(len(req.OrderIDs)))
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.access.LoadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	sources := make([]*trade.SalesOrder, len(req.OrderIDs))
	targets := make([]uuid.UUID, len(req.OrderIDs))
	for i, id := range req.OrderIDs {
		src, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		sources[i] = src
		targets[i] = src.Channel.ChannelID

		denied, err := s.access.CheckCreateAccess(ctx, actor, []*trade.SalesOrder{src}, true)
		if err != nil {
			return nil, err
		}
		if len(denied) > 0 {
			if targets[i], err = s.access.DefaultChannel(actor, req.ContextChannelID); err != nil {
				return nil, err
			}
		}
	}

	copies := make([]*trade.SalesOrder, 0, len(sources))
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for i, src := range sources {
			number, err := repos.SalesOrders().GenerateOrderNumber(ctx)
			if err != nil {
				return err
			}
			dup, err := src.Duplicate(number, targets[i])
			if err != nil {
				return err
			}
			if err := s.applyCopyDefaults(ctx, src, dup, req.Overrides); err != nil {
				return err
			}
			dup.RefreshCache()
			if err := repos.SalesOrders().Create(ctx, dup); err != nil {
				return err
			}
			copies = append(copies, dup)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales orders copied",
		zap.String("actor", actor.Username),
		zap.Int("orders", len(copies)))
	return s.toResponses(ctx, copies)
}

func (s *SalesOrderService) applyCopyDefaults(ctx context.Context, src, dup *trade.SalesOrder, overrides CopyOverrides) error {
	movedChannel := dup.Channel.ChannelID != src.Channel.ChannelID
	partyChanged := overrides.PartyID != nil || overrides.InvoiceAddress != nil
	if !movedChannel && !partyChanged {
		return nil
	}

	defaults, err := s.channels.GetDefaults(ctx, dup.Channel.ChannelID)
	if err != nil {
		return err
	}
	if movedChannel {
		if err := dup.ApplyChannelDefaults(defaults); err != nil {
			return err
		}
	}
	if partyChanged {
		partyID, priceList, address := dup.PartyID, dup.PartyPriceListID, dup.InvoiceAddress
		if overrides.PartyID != nil {
			partyID, priceList = *overrides.PartyID, overrides.PartyPriceListID
		}
		if overrides.InvoiceAddress != nil {
			address = *overrides.InvoiceAddress
		}
		if err := dup.SetParty(partyID, priceList, address); err != nil {
			return err
		}
		dup.ApplyPartyDefaults(defaults)
	}
	return nil
}

// ChangeChannel moves an order to another channel and cascades that channel's
// defaults onto it. The channel must be selectable by the actor for an existing
// order. An order that is stored or has lines keeps its channel and the call
// fails with CHANNEL_LOCKED.
func (s *SalesOrderService) ChangeChannel(ctx context.Context, actorID, orderID, channelID uuid.UUID) (_ *SalesOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "change_channel",
		telemetry.AttrOrderID.String(orderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.access.LoadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.access.CheckSelectable(actor, channelID, true); err != nil {
		return nil, err
	}

	var order *trade.SalesOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.SalesOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.ChangeChannel(channelID); err != nil {
			return err
		}
		defaults, err := s.channels.GetDefaults(ctx, channelID)
		if err != nil {
			return err
		}
		if err := order.ApplyChannelDefaults(defaults); err != nil {
			return err
		}
		return repos.SalesOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order moved to channel",
		zap.String("actor", actor.Username),
		zap.String("order_id", orderID.String()),
		zap.String("channel_id", channelID.String()))
	return s.respond(ctx, order)
}

// Cancel cancels a draft or quoted order. The actor must be able to read the
// order's channel.
func (s *SalesOrderService) Cancel(ctx context.Context, actorID, orderID uuid.UUID) (_ *SalesOrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", "cancel",
		telemetry.AttrOrderID.String(orderID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	actor, err := s.access.LoadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var order *trade.SalesOrder
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.SalesOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.access.CheckSelectable(actor, order.Channel.ChannelID, true); err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}
		return repos.SalesOrders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order cancelled",
		zap.String("actor", actor.Username),
		zap.String("order_id", orderID.String()))
	return s.respond(ctx, order)
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, order)
}

func (s *SalesOrderService) respond(ctx context.Context, order *trade.SalesOrder) (*SalesOrderResponse, error) {
	responses, err := s.toResponses(ctx, []*trade.SalesOrder{order})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// List retrieves sales orders with filtering and pagination. Orders are limited
// to the channels scoped on ctx, if any.
func (s *SalesOrderService) List(ctx context.Context, filter SalesOrderListFilter) ([]SalesOrderResponse, int64, error) {
	domainFilter := trade.SalesOrderFilter{
		ListQuery: shared.ListQuery{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalized(),
		ChannelID:           filter.ChannelID,
		PartyID:             filter.PartyID,
		Status:              filter.Status,
		HasChannelException: filter.HasChannelException,
	}

	orders, total, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	ptrs := make([]*trade.SalesOrder, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	responses, err := s.toResponses(ctx, ptrs)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// toResponses converts orders and fills in each order's channel type
func (s *SalesOrderService) toResponses(ctx context.Context, orders []*trade.SalesOrder) ([]SalesOrderResponse, error) {
	ids := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.Channel.ChannelID]; ok {
			continue
		}
		seen[o.Channel.ChannelID] = struct{}{}
		ids = append(ids, o.Channel.ChannelID)
	}

	types, err := s.channels.ChannelTypes(ctx, ids)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	out := make([]SalesOrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToSalesOrderResponse(o, types[o.Channel.ChannelID])
	}
	return out, nil
}
