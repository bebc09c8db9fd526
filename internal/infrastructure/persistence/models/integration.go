package models

import (
	"time"

	"github.com/erp/channelsync/internal/domain/integration"
	"github.com/erp/channelsync/internal/domain/trade"
	"github.com/google/uuid"
)

// ChannelModel is the persistence model for the Channel aggregate root.
type ChannelModel struct {
	Aggregate
	Code           string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string                      `gorm:"type:varchar(200);not null"`
	Source         integration.ChannelSource   `gorm:"type:varchar(20);not null"`
	CompanyID      uuid.UUID                   `gorm:"type:uuid;not null"`
	WarehouseID    uuid.UUID                   `gorm:"type:uuid;not null"`
	Currency       string                      `gorm:"type:varchar(3);not null"`
	PaymentTermID  uuid.UUID                   `gorm:"type:uuid;not null"`
	PriceListID    *uuid.UUID                  `gorm:"type:uuid"`
	InvoiceMethod  trade.InvoiceMethod         `gorm:"type:varchar(20)"`
	ShipmentMethod trade.ShipmentMethod        `gorm:"type:varchar(20)"`
	Mappings       []ChannelActionMappingModel `gorm:"foreignKey:ChannelID;references:ID"`
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the persistence model to a domain Channel entity.
func (m *ChannelModel) ToDomain() *integration.Channel {
	ch := &integration.Channel{
		BaseAggregateRoot: m.root(),
		Code:              m.Code,
		Name:              m.Name,
		Source:            m.Source,
		CompanyID:         m.CompanyID,
		WarehouseID:       m.WarehouseID,
		Currency:          m.Currency,
		PaymentTermID:     m.PaymentTermID,
		PriceListID:       m.PriceListID,
		InvoiceMethod:     m.InvoiceMethod,
		ShipmentMethod:    m.ShipmentMethod,
		Mappings:          make([]integration.ChannelActionMapping, len(m.Mappings)),
	}
	for i := range m.Mappings {
		ch.Mappings[i] = *m.Mappings[i].ToDomain()
	}
	return ch
}

// FromDomain populates the persistence model from a domain Channel entity.
func (m *ChannelModel) FromDomain(c *integration.Channel) {
	m.Aggregate = aggregateOf(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Source = c.Source
	m.CompanyID = c.CompanyID
	m.WarehouseID = c.WarehouseID
	m.Currency = c.Currency
	m.PaymentTermID = c.PaymentTermID
	m.PriceListID = c.PriceListID
	m.InvoiceMethod = c.InvoiceMethod
	m.ShipmentMethod = c.ShipmentMethod
	m.Mappings = make([]ChannelActionMappingModel, len(c.Mappings))
	for i := range c.Mappings {
		m.Mappings[i] = *ChannelActionMappingModelFromDomain(&c.Mappings[i])
		m.Mappings[i].ChannelID = c.ID
	}
}

// ChannelModelFromDomain creates a new persistence model from a domain Channel entity.
func ChannelModelFromDomain(c *integration.Channel) *ChannelModel {
	m := &ChannelModel{}
	m.FromDomain(c)
	return m
}

// ChannelActionMappingModel maps one external status of a channel to an action.
type ChannelActionMappingModel struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primary_key"`
	ChannelID      uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex:idx_channel_status,priority:1"`
	ExternalStatus string                    `gorm:"type:varchar(100);not null;uniqueIndex:idx_channel_status,priority:2"`
	Action         integration.ChannelAction `gorm:"type:varchar(30);not null"`
	InvoiceMethod  trade.InvoiceMethod       `gorm:"type:varchar(20);not null"`
	ShipmentMethod trade.ShipmentMethod      `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ChannelActionMappingModel) TableName() string {
	return "channel_action_mappings"
}

// ToDomain converts the persistence model to a domain ChannelActionMapping.
func (m *ChannelActionMappingModel) ToDomain() *integration.ChannelActionMapping {
	return &integration.ChannelActionMapping{
		ID:             m.ID,
		ChannelID:      m.ChannelID,
		ExternalStatus: m.ExternalStatus,
		Action:         m.Action,
		InvoiceMethod:  m.InvoiceMethod,
		ShipmentMethod: m.ShipmentMethod,
	}
}

// ChannelActionMappingModelFromDomain creates a new persistence model from a domain mapping.
func ChannelActionMappingModelFromDomain(a *integration.ChannelActionMapping) *ChannelActionMappingModel {
	return &ChannelActionMappingModel{
		ID:             a.ID,
		ChannelID:      a.ChannelID,
		ExternalStatus: a.ExternalStatus,
		Action:         a.Action,
		InvoiceMethod:  a.InvoiceMethod,
		ShipmentMethod: a.ShipmentMethod,
	}
}

// ChannelExceptionModel is the persistence model for the ChannelException entity.
// Origin is stored as (origin_type, origin_id) so exceptions can reference any record kind.
type ChannelExceptionModel struct {
	Entity
	OriginType string     `gorm:"type:varchar(50);not null;index:idx_channel_exceptions_origin,priority:1"`
	OriginID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_channel_exceptions_origin,priority:2"`
	ChannelID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_channel_exceptions_origin,priority:3"`
	Log        string     `gorm:"type:text;not null"`
	IsResolved bool       `gorm:"not null;default:false"`
	ResolvedAt *time.Time
	ResolvedBy *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ChannelExceptionModel) TableName() string {
	return "channel_exceptions"
}

// ToDomain converts the persistence model to a domain ChannelException entity.
func (m *ChannelExceptionModel) ToDomain() *integration.ChannelException {
	return &integration.ChannelException{
		BaseEntity: m.entity(),
		Origin:     integration.ExceptionOrigin{Type: m.OriginType, ID: m.OriginID},
		ChannelID:  m.ChannelID,
		Log:        m.Log,
		IsResolved: m.IsResolved,
		ResolvedAt: m.ResolvedAt,
		ResolvedBy: m.ResolvedBy,
	}
}

// ChannelExceptionModelFromDomain creates a new persistence model from a domain ChannelException.
func ChannelExceptionModelFromDomain(e *integration.ChannelException) *ChannelExceptionModel {
	m := &ChannelExceptionModel{
		OriginType: e.Origin.Type,
		OriginID:   e.Origin.ID,
		ChannelID:  e.ChannelID,
		Log:        e.Log,
		IsResolved: e.IsResolved,
		ResolvedAt: e.ResolvedAt,
		ResolvedBy: e.ResolvedBy,
	}
	m.Entity = entityOf(e.BaseEntity)
	return m
}
