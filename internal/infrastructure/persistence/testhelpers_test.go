package persistence

import (
	"testing"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/erp/channelsync/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory sqlite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestChannel(t *testing.T, code string) *integration.Channel {
	t.Helper()
	ch, err := integration.NewChannel(code, code+" shop", integration.ChannelSourceWebshop,
		uuid.New(), uuid.New(), "EUR", uuid.New())
	require.NoError(t, err)
	_, err = ch.MapStatus("paid", integration.ActionProcessAutomatically, trade.InvoiceMethodOrder, trade.ShipmentMethodOrder)
	require.NoError(t, err)
	_, err = ch.MapStatus("pending", integration.ActionProcessManually, trade.InvoiceMethodShipment, trade.ShipmentMethodOrder)
	require.NoError(t, err)
	return ch
}

func newTestOrder(t *testing.T, number string, channelID uuid.UUID, identifier string) *trade.SalesOrder {
	t.Helper()
	order, err := trade.NewSalesOrder(number, uuid.New(), trade.NewChannelContext(channelID, identifier))
	require.NoError(t, err)
	lineIdentifier := ""
	if identifier != "" {
		lineIdentifier = identifier + "-L1"
	}
	_, err = order.AddLine(uuid.New(), "Widget", decimal.NewFromInt(2), decimal.NewFromFloat(12.5), lineIdentifier)
	require.NoError(t, err)
	return order
}
