package integration

import (
	"time"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
)

// ChannelResponse represents a channel in API responses
type ChannelResponse struct {
	ID             uuid.UUID                 `json:"id"`
	Code           string                    `json:"code"`
	Name           string                    `json:"name"`
	Source         integration.ChannelSource `json:"source"`
	CompanyID      uuid.UUID                 `json:"company_id"`
	WarehouseID    uuid.UUID                 `json:"warehouse_id"`
	Currency       string                    `json:"currency"`
	PaymentTermID  uuid.UUID                 `json:"payment_term_id"`
	PriceListID    *uuid.UUID                `json:"price_list_id,omitempty"`
	InvoiceMethod  trade.InvoiceMethod       `json:"invoice_method,omitempty"`
	ShipmentMethod trade.ShipmentMethod      `json:"shipment_method,omitempty"`
	Mappings       []ActionMappingResponse   `json:"mappings"`
}

// ActionMappingResponse represents one status mapping of a channel
type ActionMappingResponse struct {
	ExternalStatus string                    `json:"external_status"`
	Action         integration.ChannelAction `json:"action"`
	InvoiceMethod  trade.InvoiceMethod       `json:"invoice_method"`
	ShipmentMethod trade.ShipmentMethod      `json:"shipment_method"`
}

// ChannelListItemResponse is the light channel form used in selection lists
type ChannelListItemResponse struct {
	ID     uuid.UUID                 `json:"id"`
	Code   string                    `json:"code"`
	Name   string                    `json:"name"`
	Source integration.ChannelSource `json:"source"`
}

// ChannelExceptionResponse represents a channel exception in API responses
type ChannelExceptionResponse struct {
	ID         uuid.UUID  `json:"id"`
	OriginType string     `json:"origin_type"`
	OriginID   uuid.UUID  `json:"origin_id"`
	ChannelID  uuid.UUID  `json:"channel_id"`
	Log        string     `json:"log"`
	IsResolved bool       `json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy *uuid.UUID `json:"resolved_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RecordExceptionRequest is the payload for recording an exception on an order
type RecordExceptionRequest struct {
	Log string `json:"log" binding:"required,notblank,max=10000"`
}

// ToChannelResponse converts a domain Channel to ChannelResponse
func ToChannelResponse(c *integration.Channel) ChannelResponse {
	mappings := make([]ActionMappingResponse, len(c.Mappings))
	for i, m := range c.Mappings {
		mappings[i] = ActionMappingResponse{
			ExternalStatus: m.ExternalStatus,
			Action:         m.Action,
			InvoiceMethod:  m.InvoiceMethod,
			ShipmentMethod: m.ShipmentMethod,
		}
	}
	return ChannelResponse{
		ID:             c.ID,
		Code:           c.Code,
		Name:           c.Name,
		Source:         c.Source,
		CompanyID:      c.CompanyID,
		WarehouseID:    c.WarehouseID,
		Currency:       c.Currency,
		PaymentTermID:  c.PaymentTermID,
		PriceListID:    c.PriceListID,
		InvoiceMethod:  c.InvoiceMethod,
		ShipmentMethod: c.ShipmentMethod,
		Mappings:       mappings,
	}
}

// ToChannelListItemResponse converts a domain Channel to its list form
func ToChannelListItemResponse(c *integration.Channel) ChannelListItemResponse {
	return ChannelListItemResponse{ID: c.ID, Code: c.Code, Name: c.Name, Source: c.Source}
}

// ToChannelExceptionResponse converts a domain ChannelException to its response form
func ToChannelExceptionResponse(e *integration.ChannelException) ChannelExceptionResponse {
	return ChannelExceptionResponse{
		ID:         e.ID,
		OriginType: e.Origin.Type,
		OriginID:   e.Origin.ID,
		ChannelID:  e.ChannelID,
		Log:        e.Log,
		IsResolved: e.IsResolved,
		ResolvedAt: e.ResolvedAt,
		ResolvedBy: e.ResolvedBy,
		CreatedAt:  e.CreatedAt,
	}
}

// ToChannelExceptionResponses converts a slice of exceptions
func ToChannelExceptionResponses(exceptions []integration.ChannelException) []ChannelExceptionResponse {
	out := make([]ChannelExceptionResponse, len(exceptions))
	for i := range exceptions {
		out[i] = ToChannelExceptionResponse(&exceptions[i])
	}
	return out
}
