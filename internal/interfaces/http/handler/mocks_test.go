package handler

import (
	"context"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	tradeapp "github.com/erp/channelsync/internal/application/trade"
	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockSalesOrderUseCases struct {
	mock.Mock
}

func (m *MockSalesOrderUseCases) CreateOrders(ctx context.Context, actorID uuid.UUID, req tradeapp.CreateSalesOrdersRequest) (*tradeapp.CreateSalesOrdersResult, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.CreateSalesOrdersResult), args.Error(1)
}

func (m *MockSalesOrderUseCases) CopyOrders(ctx context.Context, actorID uuid.UUID, req tradeapp.CopySalesOrdersRequest) ([]tradeapp.SalesOrderResponse, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tradeapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderUseCases) ChangeChannel(ctx context.Context, actorID, orderID, channelID uuid.UUID) (*tradeapp.SalesOrderResponse, error) {
	args := m.Called(ctx, actorID, orderID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderUseCases) Cancel(ctx context.Context, actorID, orderID uuid.UUID) (*tradeapp.SalesOrderResponse, error) {
	args := m.Called(ctx, actorID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderUseCases) GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.SalesOrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SalesOrderResponse), args.Error(1)
}

func (m *MockSalesOrderUseCases) List(ctx context.Context, filter tradeapp.SalesOrderListFilter) ([]tradeapp.SalesOrderResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]tradeapp.SalesOrderResponse), args.Get(1).(int64), args.Error(2)
}

type MockChannelSyncUseCases struct {
	mock.Mock
}

func (m *MockChannelSyncUseCases) SyncToChannelState(ctx context.Context, orderID uuid.UUID, externalStatus string) (*tradeapp.SyncResult, error) {
	args := m.Called(ctx, orderID, externalStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SyncResult), args.Error(1)
}

func (m *MockChannelSyncUseCases) SyncBatch(ctx context.Context, requests []tradeapp.SyncRequest, strict bool, concurrency int) (*tradeapp.BatchSyncResult, error) {
	args := m.Called(ctx, requests, strict, concurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.BatchSyncResult), args.Error(1)
}

type MockExceptionUseCases struct {
	mock.Mock
}

func (m *MockExceptionUseCases) ListExceptions(ctx context.Context, orderID uuid.UUID) ([]integrationapp.ChannelExceptionResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integrationapp.ChannelExceptionResponse), args.Error(1)
}

func (m *MockExceptionUseCases) RecordException(ctx context.Context, orderID uuid.UUID, log string) (*integrationapp.ChannelExceptionResponse, error) {
	args := m.Called(ctx, orderID, log)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.ChannelExceptionResponse), args.Error(1)
}

func (m *MockExceptionUseCases) ResolveException(ctx context.Context, exceptionID, actorID uuid.UUID) (*integrationapp.ChannelExceptionResponse, error) {
	args := m.Called(ctx, exceptionID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.ChannelExceptionResponse), args.Error(1)
}

type MockChannelQueries struct {
	mock.Mock
}

func (m *MockChannelQueries) GetByID(ctx context.Context, id uuid.UUID) (*integrationapp.ChannelResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integrationapp.ChannelResponse), args.Error(1)
}

func (m *MockChannelQueries) List(ctx context.Context) ([]integrationapp.ChannelResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integrationapp.ChannelResponse), args.Error(1)
}

type MockChannelAccess struct {
	mock.Mock
}

func (m *MockChannelAccess) LoadActor(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockChannelAccess) SelectableChannels(ctx context.Context, actor *identity.User, existingOrder bool) ([]integrationapp.ChannelListItemResponse, error) {
	args := m.Called(ctx, actor, existingOrder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integrationapp.ChannelListItemResponse), args.Error(1)
}
