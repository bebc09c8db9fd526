package handler

import (
	"context"

	integrationapp "github.com/erp/channelsync/internal/application/integration"
	tradeapp "github.com/erp/channelsync/internal/application/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SalesOrderUseCases is the order surface the HTTP layer drives
type SalesOrderUseCases interface {
	CreateOrders(ctx context.Context, actorID uuid.UUID, req tradeapp.CreateSalesOrdersRequest) (*tradeapp.CreateSalesOrdersResult, error)
	CopyOrders(ctx context.Context, actorID uuid.UUID, req tradeapp.CopySalesOrdersRequest) ([]tradeapp.SalesOrderResponse, error)
	ChangeChannel(ctx context.Context, actorID, orderID, channelID uuid.UUID) (*tradeapp.SalesOrderResponse, error)
	Cancel(ctx context.Context, actorID, orderID uuid.UUID) (*tradeapp.SalesOrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.SalesOrderResponse, error)
	List(ctx context.Context, filter tradeapp.SalesOrderListFilter) ([]tradeapp.SalesOrderResponse, int64, error)
}

// ChannelSyncUseCases applies external channel statuses to orders
type ChannelSyncUseCases interface {
	SyncToChannelState(ctx context.Context, orderID uuid.UUID, externalStatus string) (*tradeapp.SyncResult, error)
	SyncBatch(ctx context.Context, requests []tradeapp.SyncRequest, strict bool, concurrency int) (*tradeapp.BatchSyncResult, error)
}

// ExceptionUseCases manages channel exceptions attached to orders
type ExceptionUseCases interface {
	ListExceptions(ctx context.Context, orderID uuid.UUID) ([]integrationapp.ChannelExceptionResponse, error)
	RecordException(ctx context.Context, orderID uuid.UUID, log string) (*integrationapp.ChannelExceptionResponse, error)
	ResolveException(ctx context.Context, exceptionID, actorID uuid.UUID) (*integrationapp.ChannelExceptionResponse, error)
}

// SalesOrderHandler handles sales order endpoints, including channel sync
type SalesOrderHandler struct {
	BaseHandler
	orders      SalesOrderUseCases
	sync        ChannelSyncUseCases
	exceptions  ExceptionUseCases
	strictBatch bool
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orders SalesOrderUseCases, sync ChannelSyncUseCases, exceptions ExceptionUseCases) *SalesOrderHandler {
	return &SalesOrderHandler{
		orders:     orders,
		sync:       sync,
		exceptions: exceptions,
	}
}

// SetStrictBatch makes every batch sync strict regardless of the request flag
func (h *SalesOrderHandler) SetStrictBatch(strict bool) {
	h.strictBatch = strict
}

// Create godoc
// @Summary      Create sales orders
// @Description  Create one or more sales orders. Orders without a channel take the context channel or the actor's default.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateSalesOrdersRequest true "Orders to create"
// @Success      201 {object} dto.Response{data=tradeapp.CreateSalesOrdersResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders [post]
func (h *SalesOrderHandler) Create(c *gin.Context) {
	actorID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	var req tradeapp.CreateSalesOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.orders.CreateOrders(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Copy godoc
// @Summary      Copy sales orders
// @Description  Duplicate orders as new drafts. Copies drop their channel identifiers and default to the context channel.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CopySalesOrdersRequest true "Orders to copy"
// @Success      201 {object} dto.Response{data=[]tradeapp.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/copy [post]
func (h *SalesOrderHandler) Copy(c *gin.Context) {
	actorID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}

	var req tradeapp.CopySalesOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	copies, err := h.orders.CopyOrders(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, copies)
}

// List godoc
// @Summary      List sales orders
// @Description  List sales orders visible to the caller's read channels
// @Tags         sales-orders
// @Produce      json
// @Param        search query string false "Order number or channel identifier"
// @Param        channel_id query string false "Channel ID" format(uuid)
// @Param        status query string false "Order status"
// @Param        has_channel_exception query bool false "Only orders with unresolved exceptions"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]tradeapp.SalesOrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders [get]
func (h *SalesOrderHandler) List(c *gin.Context) {
	var filter tradeapp.SalesOrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Page(c, orders, total, filter.Page, filter.PageSize)
}

// Get godoc
// @Summary      Get sales order by ID
// @Tags         sales-orders
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id} [get]
func (h *SalesOrderHandler) Get(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	order, err := h.orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ChangeChannel godoc
// @Summary      Move a sales order to another channel
// @Description  Applies the new channel's defaults. Orders that are stored or have lines keep their channel.
// @Tags         sales-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body tradeapp.ChangeChannelRequest true "Target channel"
// @Success      200 {object} dto.Response{data=tradeapp.SalesOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/channel [patch]
func (h *SalesOrderHandler) ChangeChannel(c *gin.Context) {
	actorID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	var req tradeapp.ChangeChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.orders.ChangeChannel(c.Request.Context(), actorID, orderID, req.ChannelID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel a sales order
// @Tags         sales-orders
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.SalesOrderResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/cancel [post]
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	actorID, err := actingUser(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user ID")
		return
	}
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	order, err := h.orders.Cancel(c.Request.Context(), actorID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ChannelSync godoc
// @Summary      Apply an external channel status
// @Description  Look up the channel's action for the status and apply it to the order
// @Tags         channel-sync
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body tradeapp.ChannelSyncRequest true "External status"
// @Success      200 {object} dto.Response{data=tradeapp.SyncResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/channel-sync [post]
func (h *SalesOrderHandler) ChannelSync(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	var req tradeapp.ChannelSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.sync.SyncToChannelState(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// BatchSync godoc
// @Summary      Apply external statuses to many orders
// @Description  Per-order failures are reported in the results. Strict batches are rejected up front when any order has an unresolved exception.
// @Tags         channel-sync
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.BatchSyncRequest true "Sync requests"
// @Success      200 {object} dto.Response{data=tradeapp.BatchSyncResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/channel-sync/batch [post]
func (h *SalesOrderHandler) BatchSync(c *gin.Context) {
	var req tradeapp.BatchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	// zero concurrency selects the service default
	result, err := h.sync.SyncBatch(c.Request.Context(), req.Requests, req.Strict || h.strictBatch, 0)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListExceptions godoc
// @Summary      List channel exceptions of an order
// @Tags         channel-exceptions
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]integrationapp.ChannelExceptionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/exceptions [get]
func (h *SalesOrderHandler) ListExceptions(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	exceptions, err := h.exceptions.ListExceptions(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, exceptions)
}

// RecordException godoc
// @Summary      Record a channel exception on an order
// @Tags         channel-exceptions
// @Accept       json
// @Produce      json
// @Param        id path string true "Sales Order ID" format(uuid)
// @Param        request body integrationapp.RecordExceptionRequest true "Exception log"
// @Success      201 {object} dto.Response{data=integrationapp.ChannelExceptionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /sales-orders/{id}/exceptions [post]
func (h *SalesOrderHandler) RecordException(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		h.InvalidID(c, "order ID")
		return
	}

	var req integrationapp.RecordExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	exception, err := h.exceptions.RecordException(c.Request.Context(), orderID, req.Log)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, exception)
}
