package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	t.Run("stdout json", func(t *testing.T) {
		l, err := New(config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "channelsync.log")
		l, err := New(config.LogConfig{Level: "WARN", Format: "console", Output: path})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.FileExists(t, path)
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := New(config.LogConfig{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("unwritable file", func(t *testing.T) {
		_, err := New(config.LogConfig{Level: "info", Output: filepath.Join(t.TempDir(), "missing", "x.log")})
		assert.Error(t, err)
	})
}

func TestFor(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	assert.Same(t, base, For(context.Background(), base))

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-7")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "user-7", UserID(ctx))

	For(ctx, base).Info("order synced")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-7", fields["user_id"])
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), "info", 100*time.Millisecond)
	sql := func() (string, int64) { return "SELECT * FROM sales_orders", 1 }
	ctx := WithRequestID(context.Background(), "req-2")

	gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "not found is not logged at warn level")

	gl.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL error", logs.All()[0].Message)
	assert.Equal(t, "req-2", logs.All()[0].ContextMap()["request_id"])

	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)

	verbose := gl.LogMode(gormlogger.Info)
	verbose.Trace(ctx, time.Now(), sql, nil)
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[2].Level)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("x"))
	assert.Equal(t, 3, logs.Len())
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Error, gormLevel("error"))
	assert.Equal(t, gormlogger.Warn, gormLevel("info"))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-9") })
	r.Use(GinMiddleware(zap.New(core)), Recovery(zap.New(core)))
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), "user-1"))
	})
	r.GET("/sales-orders/:id", func(c *gin.Context) {
		assert.Equal(t, "req-9", RequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sales-orders/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var request, panicked *observer.LoggedEntry
	for _, e := range logs.All() {
		switch e.Message {
		case "HTTP request":
			if request == nil {
				request = &e
			}
		case "Panic recovered":
			panicked = &e
		}
	}
	require.NotNil(t, request)
	require.NotNil(t, panicked)
	fields := request.ContextMap()
	assert.Equal(t, "/sales-orders/:id", fields["route"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}
