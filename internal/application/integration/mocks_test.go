package integration

import (
	"context"

	"github.com/erp/channelsync/internal/domain/identity"
	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindByCode(ctx context.Context, code string) (*integration.Channel, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindAll(ctx context.Context) ([]integration.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]integration.Channel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindActionForStatus(ctx context.Context, channelID uuid.UUID, status string) (*integration.ChannelActionMapping, error) {
	args := m.Called(ctx, channelID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ChannelActionMapping), args.Error(1)
}

func (m *MockChannelRepository) Save(ctx context.Context, channel *integration.Channel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

// MockChannelExceptionRepository is a mock implementation of ChannelExceptionRepository
type MockChannelExceptionRepository struct {
	mock.Mock
}

func (m *MockChannelExceptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.ChannelException, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ChannelException), args.Error(1)
}

func (m *MockChannelExceptionRepository) FindByOrigin(ctx context.Context, origin integration.ExceptionOrigin, channelID uuid.UUID) ([]integration.ChannelException, error) {
	args := m.Called(ctx, origin, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ChannelException), args.Error(1)
}

func (m *MockChannelExceptionRepository) Save(ctx context.Context, exception *integration.ChannelException) error {
	args := m.Called(ctx, exception)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AllowedCreateChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) AllowedReadChannels(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockSalesOrderRepository covers the order lookups the exception service makes
type MockSalesOrderRepository struct {
	mock.Mock
	trade.SalesOrderRepository
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}
