package models

import (
	"time"

	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	Aggregate
	OrderNumber       string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_sales_orders_number"`
	ChannelID         uuid.UUID             `gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_orders_channel_identifier,priority:1"`
	ChannelIdentifier *string               `gorm:"type:varchar(255);uniqueIndex:idx_sales_orders_channel_identifier,priority:2"`
	PartyID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	PartyPriceListID  *uuid.UUID            `gorm:"type:uuid"`
	InvoiceAddress    string                `gorm:"type:varchar(500)"`
	CompanyID         uuid.UUID             `gorm:"type:uuid"`
	WarehouseID       uuid.UUID             `gorm:"type:uuid"`
	Currency          string                `gorm:"type:varchar(3)"`
	PaymentTermID     *uuid.UUID            `gorm:"type:uuid"`
	PriceListID       *uuid.UUID            `gorm:"type:uuid"`
	InvoiceMethod     trade.InvoiceMethod   `gorm:"type:varchar(20);not null;default:'order'"`
	ShipmentMethod    trade.ShipmentMethod  `gorm:"type:varchar(20);not null;default:'order'"`
	Status            trade.OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index"`
	Lines             []SalesOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount       decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TotalQuantity     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	LineCount         int                   `gorm:"not null;default:0"`
	CacheRefreshedAt  *time.Time
	QuotedAt          *time.Time
	ConfirmedAt       *time.Time
	ProcessedAt       *time.Time
	CompletedAt       *time.Time
	CancelledAt       *time.Time
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
// The returned order is marked as persisted.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseAggregateRoot: m.root(),
		OrderNumber:       m.OrderNumber,
		Channel:           trade.NewChannelContext(m.ChannelID, derefString(m.ChannelIdentifier)),
		PartyID:           m.PartyID,
		PartyPriceListID:  m.PartyPriceListID,
		InvoiceAddress:    m.InvoiceAddress,
		CompanyID:         m.CompanyID,
		WarehouseID:       m.WarehouseID,
		Currency:          m.Currency,
		PaymentTermID:     m.PaymentTermID,
		PriceListID:       m.PriceListID,
		InvoiceMethod:     m.InvoiceMethod,
		ShipmentMethod:    m.ShipmentMethod,
		Status:            m.Status,
		Lines:             make([]trade.SalesOrderLine, len(m.Lines)),
		TotalAmount:       m.TotalAmount,
		TotalQuantity:     m.TotalQuantity,
		LineCount:         m.LineCount,
		CacheRefreshedAt:  m.CacheRefreshedAt,
		QuotedAt:          m.QuotedAt,
		ConfirmedAt:       m.ConfirmedAt,
		ProcessedAt:       m.ProcessedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		Persisted:         true,
	}
	for i := range m.Lines {
		order.Lines[i] = *m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain SalesOrder entity.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.Aggregate = aggregateOf(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.ChannelID = o.Channel.ChannelID
	m.ChannelIdentifier = nullableString(o.Channel.Identifier)
	m.PartyID = o.PartyID
	m.PartyPriceListID = o.PartyPriceListID
	m.InvoiceAddress = o.InvoiceAddress
	m.CompanyID = o.CompanyID
	m.WarehouseID = o.WarehouseID
	m.Currency = o.Currency
	m.PaymentTermID = o.PaymentTermID
	m.PriceListID = o.PriceListID
	m.InvoiceMethod = o.InvoiceMethod
	m.ShipmentMethod = o.ShipmentMethod
	m.Status = o.Status
	m.TotalAmount = o.TotalAmount
	m.TotalQuantity = o.TotalQuantity
	m.LineCount = o.LineCount
	m.CacheRefreshedAt = o.CacheRefreshedAt
	m.QuotedAt = o.QuotedAt
	m.ConfirmedAt = o.ConfirmedAt
	m.ProcessedAt = o.ProcessedAt
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.Lines = make([]SalesOrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = *SalesOrderLineModelFromDomain(&o.Lines[i])
		m.Lines[i].OrderID = o.ID
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder entity.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesOrderLineModel is the persistence model for the SalesOrderLine entity.
type SalesOrderLineModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName       string          `gorm:"type:varchar(200)"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ChannelIdentifier *string         `gorm:"type:varchar(255)"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// ToDomain converts the persistence model to a domain SalesOrderLine entity.
func (m *SalesOrderLineModel) ToDomain() *trade.SalesOrderLine {
	return &trade.SalesOrderLine{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Amount:            m.Amount,
		ChannelIdentifier: derefString(m.ChannelIdentifier),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// SalesOrderLineModelFromDomain creates a new persistence model from a domain SalesOrderLine entity.
func SalesOrderLineModelFromDomain(l *trade.SalesOrderLine) *SalesOrderLineModel {
	return &SalesOrderLineModel{
		ID:                l.ID,
		OrderID:           l.OrderID,
		ProductID:         l.ProductID,
		ProductName:       l.ProductName,
		Quantity:          l.Quantity,
		UnitPrice:         l.UnitPrice,
		Amount:            l.Amount,
		ChannelIdentifier: nullableString(l.ChannelIdentifier),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// SalesPaymentModel is the persistence model for the SalesPayment entity.
type SalesPaymentModel struct {
	Entity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method    string          `gorm:"type:varchar(50);not null"`
	Reference string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (SalesPaymentModel) TableName() string {
	return "sales_payments"
}

// ToDomain converts the persistence model to a domain SalesPayment entity.
func (m *SalesPaymentModel) ToDomain() *trade.SalesPayment {
	return &trade.SalesPayment{
		BaseEntity: m.entity(),
		OrderID:    m.OrderID,
		Amount:     m.Amount,
		Method:     m.Method,
		Reference:  m.Reference,
	}
}

// SalesPaymentModelFromDomain creates a new persistence model from a domain SalesPayment entity.
func SalesPaymentModelFromDomain(p *trade.SalesPayment) *SalesPaymentModel {
	m := &SalesPaymentModel{
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Method:    p.Method,
		Reference: p.Reference,
	}
	m.Entity = entityOf(p.BaseEntity)
	return m
}
