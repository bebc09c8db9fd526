package integration

import (
	"strings"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Channel Source
// ---------------------------------------------------------------------------

// ChannelSource is the kind of external origin a channel represents.
// It is exposed on orders as the channel type.
type ChannelSource string

const (
	ChannelSourceManual      ChannelSource = "manual"
	ChannelSourceWebshop     ChannelSource = "webshop"
	ChannelSourceMarketplace ChannelSource = "marketplace"
	ChannelSourcePOS         ChannelSource = "pos"
)

// IsValid returns true if the source is known
func (s ChannelSource) IsValid() bool {
	switch s {
	case ChannelSourceManual, ChannelSourceWebshop, ChannelSourceMarketplace, ChannelSourcePOS:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelSource
func (s ChannelSource) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Channel Action
// ---------------------------------------------------------------------------

// ChannelAction is the internal action taken when a channel reports a status
type ChannelAction string

const (
	// ActionProcessManually advances the order up to confirmed
	ActionProcessManually ChannelAction = "process_manually"
	// ActionProcessAutomatically advances the order up to processing
	ActionProcessAutomatically ChannelAction = "process_automatically"
	// ActionImportAsPast records a draft order as an already completed historical order
	ActionImportAsPast ChannelAction = "import_as_past"
	// ActionIgnore leaves the order state untouched
	ActionIgnore ChannelAction = "ignore"
)

// IsValid returns true if the action is known
func (a ChannelAction) IsValid() bool {
	switch a {
	case ActionProcessManually, ActionProcessAutomatically, ActionImportAsPast, ActionIgnore:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelAction
func (a ChannelAction) String() string {
	return string(a)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	ErrUnknownChannelStatus = shared.NewDomainError("UNKNOWN_CHANNEL_STATUS", "No action is mapped for the channel status")
	ErrChannelNotFound      = shared.NewDomainError("CHANNEL_NOT_FOUND", "Channel not found")
	ErrDuplicateStatus      = shared.NewDomainError("DUPLICATE_CHANNEL_STATUS", "Channel status is already mapped")
)

// NewUnknownChannelStatusError names the status and channel that had no mapping
func NewUnknownChannelStatusError(channelID uuid.UUID, status string) *shared.DomainError {
	return ErrUnknownChannelStatus.Withf("No action is mapped for status %q on channel %s", status, channelID)
}

// ---------------------------------------------------------------------------
// Channel Action Mapping
// ---------------------------------------------------------------------------

// ChannelActionMapping maps one external status string to an internal action
type ChannelActionMapping struct {
	ID             uuid.UUID
	ChannelID      uuid.UUID
	ExternalStatus string
	Action         ChannelAction
	InvoiceMethod  trade.InvoiceMethod
	ShipmentMethod trade.ShipmentMethod
}

// ---------------------------------------------------------------------------
// Channel
// ---------------------------------------------------------------------------

// Channel is an external sales origin. It carries the defaults cascaded onto its
// orders and the mapping from its status vocabulary to internal actions.
type Channel struct {
	shared.BaseAggregateRoot
	Code           string
	Name           string
	Source         ChannelSource
	CompanyID      uuid.UUID
	WarehouseID    uuid.UUID
	Currency       string
	PaymentTermID  uuid.UUID
	PriceListID    *uuid.UUID
	InvoiceMethod  trade.InvoiceMethod
	ShipmentMethod trade.ShipmentMethod
	Mappings       []ChannelActionMapping
}

// NewChannel creates a channel with its mandatory defaults
func NewChannel(code, name string, source ChannelSource, companyID, warehouseID uuid.UUID, currency string, paymentTermID uuid.UUID) (*Channel, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_CODE", "Channel code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_NAME", "Channel name cannot be empty")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL_SOURCE", "Unknown channel source: "+string(source))
	}
	if companyID == uuid.Nil || warehouseID == uuid.Nil || paymentTermID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHANNEL_DEFAULTS", "Channel requires company, warehouse and payment term")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3 letter code")
	}

	return &Channel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
		Source:            source,
		CompanyID:         companyID,
		WarehouseID:       warehouseID,
		Currency:          currency,
		PaymentTermID:     paymentTermID,
		Mappings:          make([]ChannelActionMapping, 0),
	}, nil
}

// SetPriceList sets or clears the channel price list
func (c *Channel) SetPriceList(priceListID *uuid.UUID) {
	c.PriceListID = priceListID
	c.Touch()
}

// SetFulfillmentMethods sets the default invoice and shipment methods.
// Empty values mean the channel does not override the order's own methods.
func (c *Channel) SetFulfillmentMethods(invoice trade.InvoiceMethod, shipment trade.ShipmentMethod) error {
	if invoice != "" && !invoice.IsValid() {
		return trade.ErrInvalidInvoiceMethod
	}
	if shipment != "" && !shipment.IsValid() {
		return trade.ErrInvalidShipmentMethod
	}
	c.InvoiceMethod = invoice
	c.ShipmentMethod = shipment
	c.Touch()
	return nil
}

// MapStatus adds a mapping for an external status.
// Mapping methods are mandatory since they are written to draft orders on first contact.
func (c *Channel) MapStatus(status string, action ChannelAction, invoice trade.InvoiceMethod, shipment trade.ShipmentMethod) (*ChannelActionMapping, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, shared.NewDomainError("INVALID_CHANNEL_STATUS", "Channel status cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL_ACTION", "Unknown channel action: "+string(action))
	}
	if !invoice.IsValid() {
		return nil, trade.ErrInvalidInvoiceMethod
	}
	if !shipment.IsValid() {
		return nil, trade.ErrInvalidShipmentMethod
	}
	for _, m := range c.Mappings {
		if m.ExternalStatus == status {
			return nil, ErrDuplicateStatus.Withf("Status %q is already mapped on channel %s", status, c.Code)
		}
	}

	c.Mappings = append(c.Mappings, ChannelActionMapping{
		ID:             uuid.New(),
		ChannelID:      c.ID,
		ExternalStatus: status,
		Action:         action,
		InvoiceMethod:  invoice,
		ShipmentMethod: shipment,
	})
	c.Touch()
	return &c.Mappings[len(c.Mappings)-1], nil
}

// ActionForStatus returns the mapping for an external status.
// Statuses are matched exactly.
func (c *Channel) ActionForStatus(status string) (*ChannelActionMapping, error) {
	for i := range c.Mappings {
		if c.Mappings[i].ExternalStatus == status {
			return &c.Mappings[i], nil
		}
	}
	return nil, NewUnknownChannelStatusError(c.ID, status)
}

// Defaults returns the attributes the channel cascades onto its orders
func (c *Channel) Defaults() trade.ChannelDefaults {
	return trade.ChannelDefaults{
		CompanyID:      c.CompanyID,
		WarehouseID:    c.WarehouseID,
		Currency:       c.Currency,
		PaymentTermID:  c.PaymentTermID,
		PriceListID:    c.PriceListID,
		InvoiceMethod:  c.InvoiceMethod,
		ShipmentMethod: c.ShipmentMethod,
	}
}

// IsManual reports whether orders on this channel are entered by hand
func (c *Channel) IsManual() bool {
	return c.Source == ChannelSourceManual
}
