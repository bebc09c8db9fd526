package trade

import (
	"time"

	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sales Order DTOs ====================

// CreateSalesOrderRequest represents one order in a create batch.
// ChannelID may be omitted; the actor's default channel is used then.
type CreateSalesOrderRequest struct {
	ChannelID         *uuid.UUID                  `json:"channel_id"`
	ChannelIdentifier string                      `json:"channel_identifier" binding:"max=255"`
	PartyID           uuid.UUID                   `json:"party_id" binding:"required"`
	PartyPriceListID  *uuid.UUID                  `json:"party_price_list_id"`
	InvoiceAddress    string                      `json:"invoice_address" binding:"max=500"`
	Lines             []CreateSalesOrderLineInput `json:"lines" binding:"dive"`
}

// CreateSalesOrderLineInput represents a line in the create order request
type CreateSalesOrderLineInput struct {
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	ProductName       string          `json:"product_name" binding:"max=200"`
	Quantity          decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ChannelIdentifier string          `json:"channel_identifier" binding:"max=255"`
}

// CreateSalesOrdersRequest creates several orders in one transaction
type CreateSalesOrdersRequest struct {
	// ContextChannelID is the channel explicitly chosen by the caller for orders without one
	ContextChannelID *uuid.UUID               `json:"context_channel_id"`
	Orders           []CreateSalesOrderRequest `json:"orders" binding:"required,min=1,dive"`
}

// CreateSalesOrdersResult holds the created orders plus any channel access violations.
// Violations do not undo the creation.
type CreateSalesOrdersResult struct {
	Orders           []SalesOrderResponse `json:"orders"`
	AccessViolations []uuid.UUID          `json:"access_violations,omitempty"`
	AccessError      string               `json:"access_error,omitempty"`
}

// CopyOverrides are values applied to every copy
type CopyOverrides struct {
	PartyID          *uuid.UUID `json:"party_id"`
	PartyPriceListID *uuid.UUID `json:"party_price_list_id"`
	InvoiceAddress   *string    `json:"invoice_address" binding:"omitempty,max=500"`
}

// CopySalesOrdersRequest represents a request to duplicate orders
type CopySalesOrdersRequest struct {
	OrderIDs         []uuid.UUID   `json:"order_ids" binding:"required,min=1"`
	ContextChannelID *uuid.UUID    `json:"context_channel_id"`
	Overrides        CopyOverrides `json:"overrides"`
}

// ChangeChannelRequest moves an order to another channel
type ChangeChannelRequest struct {
	ChannelID uuid.UUID `json:"channel_id" binding:"required"`
}

// SalesOrderListFilter represents filter options for the sales order list
type SalesOrderListFilter struct {
	Search              string             `form:"search"`
	ChannelID           *uuid.UUID         `form:"channel_id"`
	PartyID             *uuid.UUID         `form:"party_id"`
	Status              *trade.OrderStatus `form:"status"`
	HasChannelException *bool              `form:"has_channel_exception"`
	Page                int                `form:"page" binding:"omitempty,min=1"`
	PageSize            int                `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy             string             `form:"order_by"`
	OrderDir            string             `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID                uuid.UUID                `json:"id"`
	OrderNumber       string                   `json:"order_number"`
	ChannelID         uuid.UUID                `json:"channel_id"`
	ChannelIdentifier string                   `json:"channel_identifier,omitempty"`
	ChannelType       string                   `json:"channel_type,omitempty"`
	PartyID           uuid.UUID                `json:"party_id"`
	PartyPriceListID  *uuid.UUID               `json:"party_price_list_id,omitempty"`
	InvoiceAddress    string                   `json:"invoice_address,omitempty"`
	CompanyID         uuid.UUID                `json:"company_id"`
	WarehouseID       uuid.UUID                `json:"warehouse_id"`
	Currency          string                   `json:"currency"`
	PaymentTermID     *uuid.UUID               `json:"payment_term_id,omitempty"`
	PriceListID       *uuid.UUID               `json:"price_list_id,omitempty"`
	InvoiceMethod     trade.InvoiceMethod      `json:"invoice_method"`
	ShipmentMethod    trade.ShipmentMethod     `json:"shipment_method"`
	Status            trade.OrderStatus        `json:"status"`
	Lines             []SalesOrderLineResponse `json:"lines"`
	TotalAmount       decimal.Decimal          `json:"total_amount"`
	TotalQuantity     decimal.Decimal          `json:"total_quantity"`
	LineCount         int                      `json:"line_count"`
	QuotedAt          *time.Time               `json:"quoted_at,omitempty"`
	ConfirmedAt       *time.Time               `json:"confirmed_at,omitempty"`
	ProcessedAt       *time.Time               `json:"processed_at,omitempty"`
	CompletedAt       *time.Time               `json:"completed_at,omitempty"`
	CancelledAt       *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
	Version           int                      `json:"version"`
}

// SalesOrderLineResponse represents an order line in API responses
type SalesOrderLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name,omitempty"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Amount            decimal.Decimal `json:"amount"`
	ChannelIdentifier string          `json:"channel_identifier,omitempty"`
}

// ==================== Channel Sync DTOs ====================

// ChannelSyncRequest is the body of a single order sync
type ChannelSyncRequest struct {
	Status string `json:"status" yaml:"status" binding:"required,notblank,max=100" validate:"required,notblank,max=100"`
}

// SyncRequest pairs an order with the status its channel reports
type SyncRequest struct {
	OrderID uuid.UUID `json:"order_id" yaml:"order_id" binding:"required" validate:"required"`
	Status  string    `json:"status" yaml:"status" binding:"required,notblank,max=100" validate:"required,notblank,max=100"`
}

// BatchSyncRequest syncs several orders. Strict refuses the whole batch when an
// order has unresolved channel exceptions.
type BatchSyncRequest struct {
	Requests []SyncRequest `json:"requests" yaml:"requests" binding:"required,min=1,dive" validate:"required,min=1,dive"`
	Strict   bool          `json:"strict" yaml:"strict"`
}

// SyncResult reports the outcome of one order sync
type SyncResult struct {
	OrderID        uuid.UUID         `json:"order_id"`
	ExternalStatus string            `json:"external_status"`
	Action         string            `json:"action,omitempty"`
	FromStatus     trade.OrderStatus `json:"from_status,omitempty"`
	ToStatus       trade.OrderStatus `json:"to_status,omitempty"`
	ErrorCode      string            `json:"error_code,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Failed reports whether the sync returned an error
func (r SyncResult) Failed() bool {
	return r.Error != ""
}

// BatchSyncResult collects per-order outcomes of a batch
type BatchSyncResult struct {
	Results   []SyncResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// ToSalesOrderResponse converts a domain SalesOrder to SalesOrderResponse.
// channelType is the source of the order's channel, empty when unknown.
func ToSalesOrderResponse(order *trade.SalesOrder, channelType string) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, len(order.Lines))
	for i := range order.Lines {
		lines[i] = ToSalesOrderLineResponse(&order.Lines[i])
	}
	return SalesOrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		ChannelID:         order.Channel.ChannelID,
		ChannelIdentifier: order.Channel.Identifier,
		ChannelType:       channelType,
		PartyID:           order.PartyID,
		PartyPriceListID:  order.PartyPriceListID,
		InvoiceAddress:    order.InvoiceAddress,
		CompanyID:         order.CompanyID,
		WarehouseID:       order.WarehouseID,
		Currency:          order.Currency,
		PaymentTermID:     order.PaymentTermID,
		PriceListID:       order.PriceListID,
		InvoiceMethod:     order.InvoiceMethod,
		ShipmentMethod:    order.ShipmentMethod,
		Status:            order.Status,
		Lines:             lines,
		TotalAmount:       order.TotalAmount,
		TotalQuantity:     order.TotalQuantity,
		LineCount:         order.LineCount,
		QuotedAt:          order.QuotedAt,
		ConfirmedAt:       order.ConfirmedAt,
		ProcessedAt:       order.ProcessedAt,
		CompletedAt:       order.CompletedAt,
		CancelledAt:       order.CancelledAt,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Version:           order.Version,
	}
}

// ToSalesOrderLineResponse converts a domain SalesOrderLine to its response form
func ToSalesOrderLineResponse(line *trade.SalesOrderLine) SalesOrderLineResponse {
	return SalesOrderLineResponse{
		ID:                line.ID,
		ProductID:         line.ProductID,
		ProductName:       line.ProductName,
		Quantity:          line.Quantity,
		UnitPrice:         line.UnitPrice,
		Amount:            line.Amount,
		ChannelIdentifier: line.ChannelIdentifier,
	}
}
