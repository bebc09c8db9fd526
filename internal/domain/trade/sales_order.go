package trade

import (
	"strings"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusQuotation  OrderStatus = "quotation"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusQuotation, OrderStatusConfirmed,
		OrderStatusProcessing, OrderStatusDone, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
// through the regular lifecycle. Importing a historical order bypasses this table.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusDraft:
		return target == OrderStatusQuotation || target == OrderStatusCancelled
	case OrderStatusQuotation:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusProcessing
	case OrderStatusProcessing:
		return target == OrderStatusDone
	case OrderStatusDone, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

var (
	ErrChannelRequired            = shared.NewDomainError("CHANNEL_REQUIRED", "Order requires a channel")
	ErrChannelLocked              = shared.NewDomainError("CHANNEL_LOCKED", "Channel cannot change once the order is stored or has lines")
	ErrDuplicateChannelIdentifier = shared.NewDomainError("DUPLICATE_CHANNEL_IDENTIFIER", "An order with this channel identifier already exists on the channel")
	ErrOrderNotEditable           = shared.NewDomainError("ORDER_NOT_EDITABLE", "Order can only be edited in draft status")
	ErrNoLines                    = shared.NewDomainError("NO_LINES", "Cannot quote order without lines")
)

func invalidTransition(action string, from OrderStatus) error {
	return shared.ErrInvalidTransition.Withf("Cannot %s order in %s status", action, from)
}

// SalesOrderLine is a line of a sales order
type SalesOrderLine struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	Quantity          decimal.Decimal
	UnitPrice         decimal.Decimal
	Amount            decimal.Decimal // Quantity * UnitPrice
	ChannelIdentifier string          // Line id on the channel, empty on copies
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewSalesOrderLine creates a new sales order line
func NewSalesOrderLine(orderID, productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal, channelIdentifier string) (*SalesOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SalesOrderLine{
		ID:                uuid.New(),
		OrderID:           orderID,
		ProductID:         productID,
		ProductName:       strings.TrimSpace(productName),
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		Amount:            quantity.Mul(unitPrice).Round(4),
		ChannelIdentifier: strings.TrimSpace(channelIdentifier),
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// SalesOrder is the aggregate root for channel sales orders.
// The channel it belongs to is held as a ChannelContext value.
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber      string
	Channel          ChannelContext
	PartyID          uuid.UUID
	PartyPriceListID *uuid.UUID // Party specific price list, takes precedence over the channel's
	InvoiceAddress   string
	CompanyID        uuid.UUID
	WarehouseID      uuid.UUID
	Currency         string
	PaymentTermID    *uuid.UUID
	PriceListID      *uuid.UUID
	InvoiceMethod    InvoiceMethod
	ShipmentMethod   ShipmentMethod
	Status           OrderStatus
	Lines            []SalesOrderLine

	// Cached display fields, recomputed by RefreshCache
	TotalAmount      decimal.Decimal
	TotalQuantity    decimal.Decimal
	LineCount        int
	CacheRefreshedAt *time.Time

	QuotedAt    *time.Time
	ConfirmedAt *time.Time
	ProcessedAt *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	// Persisted is set by the repository once the order is stored
	Persisted bool
}

// NewSalesOrder creates a new draft sales order under a channel
func NewSalesOrder(orderNumber string, partyID uuid.UUID, channel ChannelContext) (*SalesOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	if !channel.IsSet() {
		return nil, ErrChannelRequired
	}

	return &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		Channel:           NewChannelContext(channel.ChannelID, channel.Identifier),
		PartyID:           partyID,
		InvoiceMethod:     InvoiceMethodOrder,
		ShipmentMethod:    ShipmentMethodOrder,
		Status:            OrderStatusDraft,
		Lines:             make([]SalesOrderLine, 0),
		TotalAmount:       decimal.Zero,
		TotalQuantity:     decimal.Zero,
	}, nil
}

// SetParty sets the party with its own price list (nil when it has none)
func (o *SalesOrder) SetParty(partyID uuid.UUID, partyPriceListID *uuid.UUID, invoiceAddress string) error {
	if !o.IsEditable() {
		return ErrOrderNotEditable
	}
	if partyID == uuid.Nil {
		return shared.NewDomainError("INVALID_PARTY", "Party ID cannot be empty")
	}
	o.PartyID = partyID
	o.PartyPriceListID = partyPriceListID
	o.InvoiceAddress = strings.TrimSpace(invoiceAddress)
	o.Touch()
	return nil
}

// ChangeChannel moves a fresh order to another channel. Once the order is
// stored or has lines every change fails, re-selecting the current channel
// included. Before that point re-selecting the current channel is a no-op.
func (o *SalesOrder) ChangeChannel(channelID uuid.UUID) error {
	if channelID == uuid.Nil {
		return ErrChannelRequired
	}
	if o.Persisted || len(o.Lines) > 0 {
		return ErrChannelLocked
	}
	if channelID == o.Channel.ChannelID {
		return nil
	}
	o.Channel = NewChannelContext(channelID, o.Channel.Identifier)
	o.Touch()
	return nil
}

// SetChannelIdentifier sets the identifier the channel uses for this order
func (o *SalesOrder) SetChannelIdentifier(identifier string) {
	o.Channel = NewChannelContext(o.Channel.ChannelID, identifier)
	o.Touch()
}

// AddLine adds a line to a draft order
func (o *SalesOrder) AddLine(productID uuid.UUID, productName string, quantity, unitPrice decimal.Decimal, channelIdentifier string) (*SalesOrderLine, error) {
	if !o.IsEditable() {
		return nil, ErrOrderNotEditable
	}
	line, err := NewSalesOrderLine(o.ID, productID, productName, quantity, unitPrice, channelIdentifier)
	if err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, *line)
	o.Touch()
	return line, nil
}

// ApplyChannelDefaults cascades channel attributes onto an editable order.
// Company, warehouse, currency and payment term always follow the channel; the
// price list only when the party has none of its own; methods only when the
// channel defines them. Applying it twice changes nothing further.
func (o *SalesOrder) ApplyChannelDefaults(d ChannelDefaults) error {
	if !o.IsEditable() {
		return ErrOrderNotEditable
	}
	o.CompanyID = d.CompanyID
	o.WarehouseID = d.WarehouseID
	o.Currency = d.Currency
	paymentTerm := d.PaymentTermID
	o.PaymentTermID = &paymentTerm
	if o.PartyPriceListID == nil {
		o.PriceListID = copyID(d.PriceListID)
	}
	if d.InvoiceMethod != "" {
		o.InvoiceMethod = d.InvoiceMethod
	}
	if d.ShipmentMethod != "" {
		o.ShipmentMethod = d.ShipmentMethod
	}
	o.Touch()
	return nil
}

// ApplyPartyDefaults fills an empty price list and payment term from the channel
// after a party change, provided the order has an invoice address.
func (o *SalesOrder) ApplyPartyDefaults(d ChannelDefaults) {
	if o.InvoiceAddress == "" {
		return
	}
	if o.PriceListID == nil {
		o.PriceListID = copyID(d.PriceListID)
	}
	if o.PaymentTermID == nil {
		paymentTerm := d.PaymentTermID
		o.PaymentTermID = &paymentTerm
	}
	o.Touch()
}

// SetFulfillmentMethods fixes the invoice and shipment methods of a draft order
func (o *SalesOrder) SetFulfillmentMethods(invoice InvoiceMethod, shipment ShipmentMethod) error {
	if !o.IsEditable() {
		return ErrOrderNotEditable
	}
	if !invoice.IsValid() {
		return ErrInvalidInvoiceMethod
	}
	if !shipment.IsValid() {
		return ErrInvalidShipmentMethod
	}
	o.InvoiceMethod = invoice
	o.ShipmentMethod = shipment
	o.Touch()
	return nil
}

// Quote moves a draft order to quotation
func (o *SalesOrder) Quote() error {
	if !o.Status.CanTransitionTo(OrderStatusQuotation) {
		return invalidTransition("quote", o.Status)
	}
	if len(o.Lines) == 0 {
		return ErrNoLines
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusQuotation
	o.QuotedAt = &now
	o.UpdatedAt = now
	o.RefreshCache()

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(EventTypeSalesOrderQuoted, o, from))
	return nil
}

// Confirm moves a quotation to confirmed
func (o *SalesOrder) Confirm() error {
	if !o.Status.CanTransitionTo(OrderStatusConfirmed) {
		return invalidTransition("confirm", o.Status)
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.RefreshCache()

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(EventTypeSalesOrderConfirmed, o, from))
	return nil
}

// Process moves a confirmed order to processing
func (o *SalesOrder) Process() error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return invalidTransition("process", o.Status)
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusProcessing
	o.ProcessedAt = &now
	o.UpdatedAt = now
	o.RefreshCache()

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(EventTypeSalesOrderProcessing, o, from))
	return nil
}

// ForceDone records a draft order as already completed, skipping quotation,
// confirmation and processing. The cached fields are left stale; callers must
// RefreshCache and store it afterwards.
func (o *SalesOrder) ForceDone() error {
	if o.Status != OrderStatusDraft {
		return invalidTransition("import as past", o.Status)
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusDone
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(EventTypeSalesOrderImportedAsPast, o, from))
	return nil
}

// Cancel cancels a draft or quoted order
func (o *SalesOrder) Cancel() error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return invalidTransition("cancel", o.Status)
	}

	from := o.Status
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now

	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(EventTypeSalesOrderCancelled, o, from))
	return nil
}

// RecordChannelSync records that the order was synchronized against a channel status
func (o *SalesOrder) RecordChannelSync(externalStatus, action string, from OrderStatus) {
	o.AddDomainEvent(NewSalesOrderChannelSyncedEvent(o, externalStatus, action, from))
}

// RefreshCache recomputes the cached display fields from the lines
func (o *SalesOrder) RefreshCache() {
	total := decimal.Zero
	qty := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Amount)
		qty = qty.Add(line.Quantity)
	}
	now := time.Now()
	o.TotalAmount = total
	o.TotalQuantity = qty
	o.LineCount = len(o.Lines)
	o.CacheRefreshedAt = &now
}

// Duplicate returns a fresh draft copy of the order under channelID.
// The copy carries no channel identifiers, neither on the order nor its lines.
func (o *SalesOrder) Duplicate(orderNumber string, channelID uuid.UUID) (*SalesOrder, error) {
	dup, err := NewSalesOrder(orderNumber, o.PartyID, ChannelContext{ChannelID: channelID})
	if err != nil {
		return nil, err
	}
	dup.PartyPriceListID = copyID(o.PartyPriceListID)
	dup.InvoiceAddress = o.InvoiceAddress
	dup.CompanyID = o.CompanyID
	dup.WarehouseID = o.WarehouseID
	dup.Currency = o.Currency
	dup.PaymentTermID = copyID(o.PaymentTermID)
	dup.PriceListID = copyID(o.PriceListID)
	dup.InvoiceMethod = o.InvoiceMethod
	dup.ShipmentMethod = o.ShipmentMethod

	for _, line := range o.Lines {
		if _, err := dup.AddLine(line.ProductID, line.ProductName, line.Quantity, line.UnitPrice, ""); err != nil {
			return nil, err
		}
	}
	return dup, nil
}

// IsEditable reports whether the order can still be edited
func (o *SalesOrder) IsEditable() bool {
	return o.Status == OrderStatusDraft
}

// IsDraft returns true if the order is in draft status
func (o *SalesOrder) IsDraft() bool {
	return o.Status == OrderStatusDraft
}

// Line returns the line with the given id, or nil
func (o *SalesOrder) Line(lineID uuid.UUID) *SalesOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
