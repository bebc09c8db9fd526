package integration

import (
	"context"
	"testing"
	"time"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newException(t *testing.T, orderID, channelID uuid.UUID, log string, resolved bool, createdAt time.Time) integration.ChannelException {
	t.Helper()
	e, err := integration.NewChannelException(integration.SalesOrderOrigin(orderID), channelID, log)
	require.NoError(t, err)
	e.CreatedAt = createdAt
	if resolved {
		require.NoError(t, e.Resolve(uuid.New()))
	}
	return *e
}

func TestExceptionService_ListExceptions(t *testing.T) {
	ctx := context.Background()
	channelID := uuid.New()
	order := newOrder(t, channelID)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	stored := []integration.ChannelException{
		newException(t, order.ID, channelID, "old resolved", true, base),
		newException(t, order.ID, channelID, "late", false, base.Add(2*time.Hour)),
		newException(t, order.ID, uuid.New(), "other channel", false, base),
		newException(t, order.ID, channelID, "early", false, base.Add(time.Hour)),
	}

	orders := new(MockSalesOrderRepository)
	orders.On("FindByID", ctx, order.ID).Return(order, nil)
	exceptions := new(MockChannelExceptionRepository)
	exceptions.On("FindByOrigin", ctx, integration.SalesOrderOrigin(order.ID), channelID).Return(stored, nil)

	svc := NewExceptionService(exceptions, orders, nil)
	got, err := svc.ListExceptions(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "early", got[0].Log)
	assert.Equal(t, "late", got[1].Log)
	assert.Equal(t, "old resolved", got[2].Log)
	assert.True(t, got[2].IsResolved)
}

func TestExceptionService_HasUnresolvedException(t *testing.T) {
	ctx := context.Background()
	channelID := uuid.New()
	order := newOrder(t, channelID)
	now := time.Now()

	tests := []struct {
		name   string
		stored []integration.ChannelException
		want   bool
	}{
		{"none", []integration.ChannelException{}, false},
		{"only resolved", []integration.ChannelException{newException(t, order.ID, channelID, "x", true, now)}, false},
		{"unresolved in order channel", []integration.ChannelException{newException(t, order.ID, channelID, "x", false, now)}, true},
		{"unresolved elsewhere", []integration.ChannelException{newException(t, order.ID, uuid.New(), "x", false, now)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exceptions := new(MockChannelExceptionRepository)
			exceptions.On("FindByOrigin", ctx, mock.Anything, channelID).Return(tt.stored, nil)
			svc := NewExceptionService(exceptions, new(MockSalesOrderRepository), nil)

			got, err := svc.HasUnresolvedException(ctx, order)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExceptionService_RecordAndResolve(t *testing.T) {
	ctx := context.Background()
	channelID := uuid.New()
	order := newOrder(t, channelID)

	orders := new(MockSalesOrderRepository)
	orders.On("FindByID", ctx, order.ID).Return(order, nil)
	exceptions := new(MockChannelExceptionRepository)
	exceptions.On("Save", ctx, mock.AnythingOfType("*integration.ChannelException")).Return(nil)

	svc := NewExceptionService(exceptions, orders, nil)
	recorded, err := svc.RecordException(ctx, order.ID, "  price mismatch  ")
	require.NoError(t, err)
	assert.Equal(t, "price mismatch", recorded.Log)
	assert.Equal(t, channelID, recorded.ChannelID)
	assert.Equal(t, integration.OriginTypeSalesOrder, recorded.OriginType)
	assert.False(t, recorded.IsResolved)

	stored, err := integration.NewChannelException(integration.SalesOrderOrigin(order.ID), channelID, "price mismatch")
	require.NoError(t, err)
	exceptions.On("FindByID", ctx, stored.ID).Return(stored, nil)

	actor := uuid.New()
	resolved, err := svc.ResolveException(ctx, stored.ID, actor)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, actor, *resolved.ResolvedBy)

	_, err = svc.ResolveException(ctx, stored.ID, actor)
	assert.ErrorIs(t, err, integration.ErrExceptionAlreadyResolved)
	exceptions.AssertNumberOfCalls(t, "Save", 2)
}

func TestExceptionService_OrderNotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	orders := new(MockSalesOrderRepository)
	orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	svc := NewExceptionService(new(MockChannelExceptionRepository), orders, nil)
	_, err := svc.ListExceptions(ctx, id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.RecordException(ctx, id, "log")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
