package integration

import (
	"context"
	"testing"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelService_GetDefaults(t *testing.T) {
	ctx := context.Background()
	ch := newChannel(t, "WEB")
	priceList := uuid.New()
	ch.SetPriceList(&priceList)
	require.NoError(t, ch.SetFulfillmentMethods(trade.InvoiceMethodShipment, ""))

	channels := new(MockChannelRepository)
	channels.On("FindByID", ctx, ch.ID).Return(ch, nil)
	svc := NewChannelService(channels)

	d, err := svc.GetDefaults(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch.CompanyID, d.CompanyID)
	assert.Equal(t, ch.WarehouseID, d.WarehouseID)
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, ch.PaymentTermID, d.PaymentTermID)
	assert.Equal(t, &priceList, d.PriceListID)
	assert.Equal(t, trade.InvoiceMethodShipment, d.InvoiceMethod)
	assert.Empty(t, d.ShipmentMethod)
}

func TestChannelService_GetByID(t *testing.T) {
	ctx := context.Background()
	ch := newChannel(t, "WEB")
	_, err := ch.MapStatus("paid", integration.ActionProcessAutomatically, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder)
	require.NoError(t, err)

	channels := new(MockChannelRepository)
	channels.On("FindByID", ctx, ch.ID).Return(ch, nil)
	missing := uuid.New()
	channels.On("FindByID", ctx, missing).Return(nil, integration.ErrChannelNotFound)
	svc := NewChannelService(channels)

	resp, err := svc.GetByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "WEB", resp.Code)
	require.Len(t, resp.Mappings, 1)
	assert.Equal(t, integration.ActionProcessAutomatically, resp.Mappings[0].Action)

	_, err = svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, integration.ErrChannelNotFound)
}

func TestChannelService_GetActionForStatus(t *testing.T) {
	ctx := context.Background()
	channelID := uuid.New()
	mapping := &integration.ChannelActionMapping{
		ChannelID:      channelID,
		ExternalStatus: "pending",
		Action:         integration.ActionProcessManually,
		InvoiceMethod:  trade.InvoiceMethodShipment,
		ShipmentMethod: trade.ShipmentMethodOrder,
	}

	channels := new(MockChannelRepository)
	channels.On("FindActionForStatus", ctx, channelID, "pending").Return(mapping, nil)
	channels.On("FindActionForStatus", ctx, channelID, "Pending").
		Return(nil, integration.NewUnknownChannelStatusError(channelID, "Pending"))
	svc := NewChannelService(channels)

	got, err := svc.GetActionForStatus(ctx, channelID, "pending")
	require.NoError(t, err)
	assert.Equal(t, integration.ActionProcessManually, got.Action)

	_, err = svc.GetActionForStatus(ctx, channelID, "Pending")
	assert.ErrorIs(t, err, integration.ErrUnknownChannelStatus)
}

func TestChannelService_List(t *testing.T) {
	ctx := context.Background()
	channels := new(MockChannelRepository)
	channels.On("FindAll", ctx).Return([]integration.Channel{*newChannel(t, "POS"), *newChannel(t, "WEB")}, nil)

	got, err := NewChannelService(channels).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "POS", got[0].Code)
	assert.NotNil(t, got[0].Mappings)
}

func TestChannelService_ChannelTypes(t *testing.T) {
	ctx := context.Background()
	web := newChannel(t, "WEB")
	unknown := uuid.New()

	channels := new(MockChannelRepository)
	channels.On("FindByIDs", ctx, []uuid.UUID{web.ID, unknown}).Return([]integration.Channel{*web}, nil)
	svc := NewChannelService(channels)

	types, err := svc.ChannelTypes(ctx, []uuid.UUID{web.ID, unknown})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]string{web.ID: "webshop"}, types)

	empty, err := svc.ChannelTypes(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	channels.AssertNumberOfCalls(t, "FindByIDs", 1)
}
