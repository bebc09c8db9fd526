package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() ChannelDefaults {
	priceList := uuid.New()
	return ChannelDefaults{
		CompanyID:      uuid.New(),
		WarehouseID:    uuid.New(),
		Currency:       "EUR",
		PaymentTermID:  uuid.New(),
		PriceListID:    &priceList,
		InvoiceMethod:  InvoiceMethodShipment,
		ShipmentMethod: ShipmentMethodInvoice,
	}
}

func TestSalesOrder_ApplyChannelDefaults(t *testing.T) {
	t.Run("copies every channel attribute", func(t *testing.T) {
		order := createTestOrder(t)
		d := testDefaults()

		require.NoError(t, order.ApplyChannelDefaults(d))
		assert.Equal(t, d.CompanyID, order.CompanyID)
		assert.Equal(t, d.WarehouseID, order.WarehouseID)
		assert.Equal(t, "EUR", order.Currency)
		require.NotNil(t, order.PaymentTermID)
		assert.Equal(t, d.PaymentTermID, *order.PaymentTermID)
		require.NotNil(t, order.PriceListID)
		assert.Equal(t, *d.PriceListID, *order.PriceListID)
		assert.Equal(t, InvoiceMethodShipment, order.InvoiceMethod)
		assert.Equal(t, ShipmentMethodInvoice, order.ShipmentMethod)
	})

	t.Run("party price list wins", func(t *testing.T) {
		order := createTestOrder(t)
		partyList := uuid.New()
		require.NoError(t, order.SetParty(order.PartyID, &partyList, ""))

		require.NoError(t, order.ApplyChannelDefaults(testDefaults()))
		assert.Nil(t, order.PriceListID)
	})

	t.Run("empty channel methods leave the order alone", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.SetFulfillmentMethods(InvoiceMethodManual, ShipmentMethodManual))

		d := testDefaults()
		d.InvoiceMethod = ""
		d.ShipmentMethod = ""
		require.NoError(t, order.ApplyChannelDefaults(d))
		assert.Equal(t, InvoiceMethodManual, order.InvoiceMethod)
		assert.Equal(t, ShipmentMethodManual, order.ShipmentMethod)
	})

	t.Run("idempotent", func(t *testing.T) {
		order := createTestOrder(t)
		d := testDefaults()

		require.NoError(t, order.ApplyChannelDefaults(d))
		once := *order
		require.NoError(t, order.ApplyChannelDefaults(d))

		assert.Equal(t, once.CompanyID, order.CompanyID)
		assert.Equal(t, once.WarehouseID, order.WarehouseID)
		assert.Equal(t, once.Currency, order.Currency)
		assert.Equal(t, *once.PaymentTermID, *order.PaymentTermID)
		assert.Equal(t, *once.PriceListID, *order.PriceListID)
		assert.Equal(t, once.InvoiceMethod, order.InvoiceMethod)
		assert.Equal(t, once.ShipmentMethod, order.ShipmentMethod)
	})

	t.Run("rejected once quoted", func(t *testing.T) {
		order := createTestOrder(t)
		addTestLine(t, order, 1, 1)
		require.NoError(t, order.Quote())
		assert.ErrorIs(t, order.ApplyChannelDefaults(testDefaults()), ErrOrderNotEditable)
	})
}

func TestSalesOrder_ApplyPartyDefaults(t *testing.T) {
	t.Run("fills empty price list and payment term", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.SetParty(uuid.New(), nil, "1 Main St"))
		d := testDefaults()

		order.ApplyPartyDefaults(d)
		require.NotNil(t, order.PriceListID)
		assert.Equal(t, *d.PriceListID, *order.PriceListID)
		require.NotNil(t, order.PaymentTermID)
		assert.Equal(t, d.PaymentTermID, *order.PaymentTermID)
	})

	t.Run("keeps existing values", func(t *testing.T) {
		order := createTestOrder(t)
		require.NoError(t, order.SetParty(uuid.New(), nil, "1 Main St"))
		term := uuid.New()
		order.PaymentTermID = &term

		order.ApplyPartyDefaults(testDefaults())
		assert.Equal(t, term, *order.PaymentTermID)
	})

	t.Run("needs an invoice address", func(t *testing.T) {
		order := createTestOrder(t)
		order.ApplyPartyDefaults(testDefaults())
		assert.Nil(t, order.PriceListID)
		assert.Nil(t, order.PaymentTermID)
	})
}
