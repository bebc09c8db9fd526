package datascope

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type order struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestNewFilterFromContext(t *testing.T) {
	t.Run("unscoped context lets everything through", func(t *testing.T) {
		f := NewFilterFromContext(context.Background())

		assert.False(t, f.IsScoped())
		assert.True(t, f.CanRead(uuid.New()))
	})

	t.Run("reads channels stored on the context", func(t *testing.T) {
		userID := uuid.New()
		allowed := uuid.New()
		ctx := WithReadChannels(context.Background(), userID, []uuid.UUID{allowed})

		f := NewFilterFromContext(ctx)

		assert.True(t, f.IsScoped())
		assert.Equal(t, userID, f.GetUserID())
		assert.True(t, f.CanRead(allowed))
		assert.False(t, f.CanRead(uuid.New()))
	})

	t.Run("system actor is not scoped", func(t *testing.T) {
		ctx := WithReadChannels(context.Background(), uuid.Nil, nil)

		f := NewFilterFromContext(ctx)

		assert.False(t, f.IsScoped())
		assert.True(t, f.CanRead(uuid.New()))
	})
}

func TestFilter_Apply(t *testing.T) {
	t.Run("adds channel predicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		ch1, ch2 := uuid.New(), uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE orders.channel_id IN \(\$1,\$2\)`).
			WithArgs(ch1, ch2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "channel_id"}))

		var rows []order
		err := db.Scopes(NewFilter(uuid.New(), []uuid.UUID{ch1, ch2}).ApplyToQuery("orders.channel_id")).
			Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no readable channel yields empty result", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE 1 = 0`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "channel_id"}))

		var rows []order
		err := NewFilter(uuid.New(), nil).Apply(db, "orders.channel_id").Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unscoped context adds nothing", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(`SELECT \* FROM "orders"$`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "channel_id"}))

		var rows []order
		err := db.Scopes(ChannelScopeFromContext(context.Background(), "orders.channel_id")).Find(&rows).Error
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
