package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/channelsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDatabase struct {
	err error
}

func (d stubDatabase) Ping(context.Context) error { return d.err }

func (d stubDatabase) Stats() sql.DBStats {
	return sql.DBStats{MaxOpenConnections: 10, OpenConnections: 3, InUse: 1, Idle: 2}
}

func TestSystemHandler_Health(t *testing.T) {
	tests := []struct {
		name           string
		db             DatabaseStatus
		expectedStatus int
		expectedDB     string
	}{
		{"database reachable", stubDatabase{}, http.StatusOK, "ok"},
		{"database down", stubDatabase{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unreachable"},
		{"no database", nil, http.StatusOK, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("channelsync", "test", tt.db)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

			h.Health(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var resp struct {
				Data HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedDB, resp.Data.Database)
			assert.NotEmpty(t, resp.Data.Uptime)
		})
	}
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("channelsync", "1.2.3", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]any)
	assert.Equal(t, "channelsync", data["name"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotContains(t, data, "database")
}

func TestSystemHandler_GetSystemInfo_PoolStats(t *testing.T) {
	h := NewSystemHandler("channelsync", "1.2.3", stubDatabase{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	var resp struct {
		Data SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Database)
	assert.Equal(t, PoolStats{MaxOpen: 10, Open: 3, InUse: 1, Idle: 2}, *resp.Data.Database)
}
