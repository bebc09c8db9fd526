package handler

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/channelsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DatabaseStatus reports reachability and pool usage of the database
type DatabaseStatus interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

// SystemHandler handles health and system info endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        DatabaseStatus
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(name, version string, db DatabaseStatus) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Uptime   string `json:"uptime" example:"1h30m45s"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string     `json:"name" example:"channelsync"`
	Version   string     `json:"version" example:"1.0.0"`
	GoVersion string     `json:"go_version" example:"go1.25.5"`
	Uptime    string     `json:"uptime" example:"1h30m45s"`
	Database  *PoolStats `json:"database,omitempty"`
}

// PoolStats is a snapshot of the database connection pool
type PoolStats struct {
	MaxOpen   int   `json:"max_open"`
	Open      int   `json:"open"`
	InUse     int   `json:"in_use"`
	Idle      int   `json:"idle"`
	WaitCount int64 `json:"wait_count"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports service liveness and database reachability
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Uptime:   h.uptime(),
	}
	status := http.StatusOK

	if h.db == nil {
		resp.Database = "not configured"
	} else if err := h.db.Ping(c.Request.Context()); err != nil {
		_ = c.Error(err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.OK(resp))
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    h.uptime(),
	}
	if h.db != nil {
		st := h.db.Stats()
		info.Database = &PoolStats{
			MaxOpen:   st.MaxOpenConnections,
			Open:      st.OpenConnections,
			InUse:     st.InUse,
			Idle:      st.Idle,
			WaitCount: st.WaitCount,
		}
	}
	h.Success(c, info)
}

func (h *SystemHandler) uptime() string {
	return time.Since(h.startTime).Round(time.Second).String()
}
