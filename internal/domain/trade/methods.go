package trade

import (
	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceMethod decides when an order is invoiced
type InvoiceMethod string

const (
	InvoiceMethodManual   InvoiceMethod = "manual"
	InvoiceMethodOrder    InvoiceMethod = "order"
	InvoiceMethodShipment InvoiceMethod = "shipment"
)

// IsValid checks if the invoice method is known
func (m InvoiceMethod) IsValid() bool {
	switch m {
	case InvoiceMethodManual, InvoiceMethodOrder, InvoiceMethodShipment:
		return true
	}
	return false
}

// ShipmentMethod decides when an order is shipped
type ShipmentMethod string

const (
	ShipmentMethodManual  ShipmentMethod = "manual"
	ShipmentMethodOrder   ShipmentMethod = "order"
	ShipmentMethodInvoice ShipmentMethod = "invoice"
)

// IsValid checks if the shipment method is known
func (m ShipmentMethod) IsValid() bool {
	switch m {
	case ShipmentMethodManual, ShipmentMethodOrder, ShipmentMethodInvoice:
		return true
	}
	return false
}

var (
	ErrInvalidInvoiceMethod  = shared.NewDomainError("INVALID_INVOICE_METHOD", "Unknown invoice method")
	ErrInvalidShipmentMethod = shared.NewDomainError("INVALID_SHIPMENT_METHOD", "Unknown shipment method")
)

// ChannelDefaults are the attributes a channel cascades onto its orders.
// Empty methods mean the channel leaves the order's own value alone.
type ChannelDefaults struct {
	CompanyID      uuid.UUID
	WarehouseID    uuid.UUID
	Currency       string
	PaymentTermID  uuid.UUID
	PriceListID    *uuid.UUID
	InvoiceMethod  InvoiceMethod
	ShipmentMethod ShipmentMethod
}
