package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/lock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testChannelID = uuid.New()

func newDraftOrder(t *testing.T, number string) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder(number, uuid.New(), trade.NewChannelContext(testChannelID, "ext-"+number))
	require.NoError(t, err)
	_, err = order.AddLine(uuid.New(), "Widget", decimal.NewFromInt(2), decimal.NewFromFloat(12.5), "ext-"+number+"-L1")
	require.NoError(t, err)
	order.Persisted = true
	order.ClearDomainEvents()
	return order
}

func mappingFor(action integration.ChannelAction, invoice trade.InvoiceMethod, shipment trade.ShipmentMethod) *integration.ChannelActionMapping {
	return &integration.ChannelActionMapping{
		ID:             uuid.New(),
		ChannelID:      testChannelID,
		Action:         action,
		InvoiceMethod:  invoice,
		ShipmentMethod: shipment,
	}
}

type syncFixture struct {
	orders     *MockSalesOrderRepository
	payments   *MockPaymentRepository
	channels   *MockChannelRepository
	exceptions *MockExceptionChecker
	locker     *lock.MemoryLocker
	publisher  *recordingPublisher
	service    *ChannelSyncService
}

func newSyncFixture(opts ...ChannelSyncOption) *syncFixture {
	f := &syncFixture{
		orders:     new(MockSalesOrderRepository),
		payments:   new(MockPaymentRepository),
		channels:   new(MockChannelRepository),
		exceptions: new(MockExceptionChecker),
		locker:     lock.NewMemoryLocker(),
		publisher:  &recordingPublisher{},
	}
	scope := NewNoOpTransactionScope(f.orders, f.payments, f.channels, nil)
	opts = append([]ChannelSyncOption{WithEventPublisher(f.publisher), WithLockWait(time.Second)}, opts...)
	f.service = NewChannelSyncService(scope, f.orders, f.exceptions, f.locker, nil, opts...)
	return f
}

func (f *syncFixture) expectOrder(order *trade.SalesOrder, status string, mapping *integration.ChannelActionMapping) {
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.channels.On("FindActionForStatus", mock.Anything, order.Channel.ChannelID, status).Return(mapping, nil)
}

func TestChannelSyncService_ProcessAutomatically(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-1")
	f.expectOrder(order, "paid", mappingFor(integration.ActionProcessAutomatically, trade.InvoiceMethodShipment, trade.ShipmentMethodInvoice))
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "paid")
	require.NoError(t, err)

	assert.Equal(t, trade.OrderStatusProcessing, order.Status)
	assert.Equal(t, trade.InvoiceMethodShipment, order.InvoiceMethod)
	assert.Equal(t, trade.ShipmentMethodInvoice, order.ShipmentMethod)
	assert.Equal(t, string(integration.ActionProcessAutomatically), result.Action)
	assert.Equal(t, trade.OrderStatusDraft, result.FromStatus)
	assert.Equal(t, trade.OrderStatusProcessing, result.ToStatus)
	assert.True(t, decimal.NewFromInt(25).Equal(order.TotalAmount))

	// methods saved while draft, then the transitions
	f.orders.AssertNumberOfCalls(t, "Save", 2)
	assert.Equal(t, []string{
		trade.EventTypeSalesOrderQuoted,
		trade.EventTypeSalesOrderConfirmed,
		trade.EventTypeSalesOrderProcessing,
		trade.EventTypeSalesOrderChannelSynced,
	}, f.publisher.types())
	assert.Empty(t, order.GetDomainEvents())
	assert.Zero(t, f.locker.Held())
}

func TestChannelSyncService_ProcessManually(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-2")
	f.expectOrder(order, "pending", mappingFor(integration.ActionProcessManually, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder))
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "pending")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, order.Status)
	assert.Equal(t, trade.OrderStatusConfirmed, result.ToStatus)
	f.payments.AssertNotCalled(t, "DeleteByOrder", mock.Anything, mock.Anything)
}

func TestChannelSyncService_ProcessAutomaticallyFromQuotation(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-3")
	require.NoError(t, order.Quote())
	order.ClearDomainEvents()
	invoice := order.InvoiceMethod
	f.expectOrder(order, "paid", mappingFor(integration.ActionProcessAutomatically, trade.InvoiceMethodManual, trade.ShipmentMethodManual))
	f.orders.On("Save", mock.Anything, order).Return(nil)

	_, err := f.service.SyncToChannelState(context.Background(), order.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusProcessing, order.Status)
	// methods only follow the mapping on drafts
	assert.Equal(t, invoice, order.InvoiceMethod)
	f.orders.AssertNumberOfCalls(t, "Save", 1)
}

func TestChannelSyncService_ImportAsPast(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-4")
	assert.Nil(t, order.CacheRefreshedAt)
	f.expectOrder(order, "archived", mappingFor(integration.ActionImportAsPast, trade.InvoiceMethodManual, trade.ShipmentMethodManual))
	f.orders.On("Save", mock.Anything, order).Return(nil)
	f.payments.On("DeleteByOrder", mock.Anything, order.ID).Return(int64(2), nil)
	f.orders.On("StoreCache", mock.Anything, mock.MatchedBy(func(o *trade.SalesOrder) bool {
		return o.CacheRefreshedAt != nil && o.LineCount == 1 && o.TotalAmount.Equal(decimal.NewFromInt(25))
	})).Return(nil)

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "archived")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDone, order.Status)
	assert.Equal(t, trade.OrderStatusDone, result.ToStatus)
	assert.Equal(t, trade.InvoiceMethodManual, order.InvoiceMethod)
	f.payments.AssertExpectations(t)
	f.orders.AssertCalled(t, "StoreCache", mock.Anything, order)
	assert.Contains(t, f.publisher.types(), trade.EventTypeSalesOrderImportedAsPast)
}

func TestChannelSyncService_ImportAsPastIgnoresNonDraft(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-5")
	require.NoError(t, order.Quote())
	require.NoError(t, order.Confirm())
	order.ClearDomainEvents()
	f.expectOrder(order, "archived", mappingFor(integration.ActionImportAsPast, trade.InvoiceMethodManual, trade.ShipmentMethodManual))

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "archived")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusConfirmed, result.ToStatus)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.payments.AssertNotCalled(t, "DeleteByOrder", mock.Anything, mock.Anything)
	assert.Equal(t, []string{trade.EventTypeSalesOrderChannelSynced}, f.publisher.types())
}

func TestChannelSyncService_Ignore(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-6")
	f.expectOrder(order, "on-hold", mappingFor(integration.ActionIgnore, trade.InvoiceMethodManual, trade.ShipmentMethodOrder))
	f.orders.On("Save", mock.Anything, order).Return(nil)

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "on-hold")
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDraft, result.ToStatus)
	assert.Equal(t, trade.InvoiceMethodManual, order.InvoiceMethod)
	f.orders.AssertNumberOfCalls(t, "Save", 1)
}

func TestChannelSyncService_UnknownStatus(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-7")
	before := order.InvoiceMethod
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.channels.On("FindActionForStatus", mock.Anything, testChannelID, "Paid").
		Return(nil, integration.NewUnknownChannelStatusError(testChannelID, "Paid"))

	result, err := f.service.SyncToChannelState(context.Background(), order.ID, "Paid")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, integration.ErrUnknownChannelStatus)
	assert.Equal(t, trade.OrderStatusDraft, order.Status)
	assert.Equal(t, before, order.InvoiceMethod)
	f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.types())
	assert.Zero(t, f.locker.Held())
}

func TestChannelSyncService_LifecycleErrorPropagates(t *testing.T) {
	f := newSyncFixture()
	order, err := trade.NewSalesOrder("SO-8", uuid.New(), trade.NewChannelContext(testChannelID, ""))
	require.NoError(t, err)
	f.expectOrder(order, "paid", mappingFor(integration.ActionProcessManually, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder))
	f.orders.On("Save", mock.Anything, order).Return(nil)

	_, err = f.service.SyncToChannelState(context.Background(), order.ID, "paid")
	assert.ErrorIs(t, err, trade.ErrNoLines)
	assert.Empty(t, f.publisher.types())
}

func TestChannelSyncService_ConcurrencyConflict(t *testing.T) {
	f := newSyncFixture()
	order := newDraftOrder(t, "SO-9")
	f.expectOrder(order, "paid", mappingFor(integration.ActionProcessManually, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder))
	f.orders.On("Save", mock.Anything, order).Return(shared.ErrConcurrencyConflict)

	_, err := f.service.SyncToChannelState(context.Background(), order.ID, "paid")
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestChannelSyncService_OrderLocked(t *testing.T) {
	f := newSyncFixture(WithLockWait(0))
	order := newDraftOrder(t, "SO-10")

	unlock, err := f.locker.Acquire(context.Background(), lock.OrderKey(order.ID), 0)
	require.NoError(t, err)
	defer func() { _ = unlock(context.Background()) }()

	_, err = f.service.SyncToChannelState(context.Background(), order.ID, "paid")
	assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
	f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestChannelSyncService_SyncBatch(t *testing.T) {
	f := newSyncFixture()
	ok1 := newDraftOrder(t, "SO-11")
	ok2 := newDraftOrder(t, "SO-12")
	bad := newDraftOrder(t, "SO-13")
	mapping := mappingFor(integration.ActionProcessManually, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder)
	f.expectOrder(ok1, "pending", mapping)
	f.expectOrder(ok2, "pending", mapping)
	f.orders.On("FindByID", mock.Anything, bad.ID).Return(bad, nil)
	f.channels.On("FindActionForStatus", mock.Anything, testChannelID, "bogus").
		Return(nil, integration.NewUnknownChannelStatusError(testChannelID, "bogus"))
	f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

	requests := []SyncRequest{
		{OrderID: ok1.ID, Status: "pending"},
		{OrderID: bad.ID, Status: "bogus"},
		{OrderID: ok2.ID, Status: "pending"},
	}
	batch, err := f.service.SyncBatch(context.Background(), requests, false, 2)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)

	assert.Equal(t, ok1.ID, batch.Results[0].OrderID)
	assert.Equal(t, trade.OrderStatusConfirmed, batch.Results[0].ToStatus)
	assert.True(t, batch.Results[1].Failed())
	assert.Equal(t, integration.ErrUnknownChannelStatus.Code, batch.Results[1].ErrorCode)
	assert.Equal(t, trade.OrderStatusDraft, bad.Status)
	assert.Equal(t, trade.OrderStatusConfirmed, ok2.Status)
	f.exceptions.AssertNotCalled(t, "HasUnresolvedException", mock.Anything, mock.Anything)
}

func TestChannelSyncService_SyncBatchStrict(t *testing.T) {
	t.Run("blocked by unresolved exception", func(t *testing.T) {
		f := newSyncFixture()
		clean := newDraftOrder(t, "SO-21")
		blocked := newDraftOrder(t, "SO-22")
		f.orders.On("FindByID", mock.Anything, clean.ID).Return(clean, nil)
		f.orders.On("FindByID", mock.Anything, blocked.ID).Return(blocked, nil)
		f.exceptions.On("HasUnresolvedException", mock.Anything, clean).Return(false, nil)
		f.exceptions.On("HasUnresolvedException", mock.Anything, blocked).Return(true, nil)

		requests := []SyncRequest{{OrderID: clean.ID, Status: "paid"}, {OrderID: blocked.ID, Status: "paid"}}
		batch, err := f.service.SyncBatch(context.Background(), requests, true, 0)
		require.Error(t, err)
		assert.Nil(t, batch)
		assert.ErrorIs(t, err, integrationapp.ErrChannelException)
		assert.Equal(t, "You missed some unresolved exceptions in sale(s) SO-22", err.Error())

		var excErr *integrationapp.ChannelExceptionError
		require.True(t, errors.As(err, &excErr))
		assert.Equal(t, []uuid.UUID{blocked.ID}, excErr.OrderIDs)

		f.channels.AssertNotCalled(t, "FindActionForStatus", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, trade.OrderStatusDraft, clean.Status)
	})

	t.Run("clean batch syncs", func(t *testing.T) {
		f := newSyncFixture()
		order := newDraftOrder(t, "SO-23")
		f.expectOrder(order, "paid", mappingFor(integration.ActionProcessAutomatically, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder))
		f.exceptions.On("HasUnresolvedException", mock.Anything, order).Return(false, nil)
		f.orders.On("Save", mock.Anything, order).Return(nil)

		batch, err := f.service.SyncBatch(context.Background(), []SyncRequest{{OrderID: order.ID, Status: "paid"}}, true, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Succeeded)
		assert.Equal(t, trade.OrderStatusProcessing, order.Status)
	})

	t.Run("missing order is left to the sync", func(t *testing.T) {
		f := newSyncFixture()
		missing := uuid.New()
		f.orders.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

		batch, err := f.service.SyncBatch(context.Background(), []SyncRequest{{OrderID: missing, Status: "paid"}}, true, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Failed)
		assert.Equal(t, shared.ErrNotFound.Code, batch.Results[0].ErrorCode)
	})
}
