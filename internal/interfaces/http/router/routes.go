package router

import (
	"github.com/erp/channelsync/internal/interfaces/http/handler"
)

// Handlers groups the HTTP handlers exposed by the API
type Handlers struct {
	SalesOrders       *handler.SalesOrderHandler
	ChannelExceptions *handler.ChannelExceptionHandler
	Channels          *handler.ChannelHandler
	System            *handler.SystemHandler
}

// RegisterAPI mounts the sales order, channel exception, channel and system groups
func RegisterAPI(r *Router, h Handlers) {
	orders := NewGroup("/sales-orders")
	orders.POST("", h.SalesOrders.Create)
	orders.GET("", h.SalesOrders.List)
	orders.POST("/copy", h.SalesOrders.Copy)
	orders.POST("/channel-sync/batch", h.SalesOrders.BatchSync)
	orders.GET("/:id", h.SalesOrders.Get)
	orders.PATCH("/:id/channel", h.SalesOrders.ChangeChannel)
	orders.POST("/:id/cancel", h.SalesOrders.Cancel)
	orders.POST("/:id/channel-sync", h.SalesOrders.ChannelSync)
	orders.GET("/:id/exceptions", h.SalesOrders.ListExceptions)
	orders.POST("/:id/exceptions", h.SalesOrders.RecordException)

	exceptions := NewGroup("/channel-exceptions")
	exceptions.POST("/:id/resolve", h.ChannelExceptions.Resolve)

	channels := NewGroup("/channels")
	channels.GET("", h.Channels.List)
	channels.GET("/selectable", h.Channels.Selectable)
	channels.GET("/:id", h.Channels.Get)

	health := NewGroup("/health")
	health.GET("", h.System.Health)

	system := NewGroup("/system")
	system.GET("/info", h.System.GetSystemInfo)

	r.Mount(orders, exceptions, channels, health, system)
}
