package integration

import (
	"sort"
	"strings"
	"time"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrExceptionAlreadyResolved is returned when resolving a resolved exception
var ErrExceptionAlreadyResolved = shared.NewDomainError("EXCEPTION_ALREADY_RESOLVED", "Channel exception is already resolved")

// OriginTypeSalesOrder is the origin type of exceptions raised against sales orders
const OriginTypeSalesOrder = "sales_order"

// ExceptionOrigin references the record an exception was raised against
type ExceptionOrigin struct {
	Type string
	ID   uuid.UUID
}

// SalesOrderOrigin returns the origin of a sales order
func SalesOrderOrigin(orderID uuid.UUID) ExceptionOrigin {
	return ExceptionOrigin{Type: OriginTypeSalesOrder, ID: orderID}
}

// ChannelException is a problem detected while importing or reconciling a record
// from a channel. Only reconciliation code flips IsResolved.
type ChannelException struct {
	shared.BaseEntity
	Origin     ExceptionOrigin
	ChannelID  uuid.UUID
	Log        string
	IsResolved bool
	ResolvedAt *time.Time
	ResolvedBy *uuid.UUID
}

// NewChannelException creates an unresolved exception
func NewChannelException(origin ExceptionOrigin, channelID uuid.UUID, log string) (*ChannelException, error) {
	if origin.ID == uuid.Nil || strings.TrimSpace(origin.Type) == "" {
		return nil, shared.NewDomainError("INVALID_EXCEPTION_ORIGIN", "Exception origin is required")
	}
	if channelID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EXCEPTION_CHANNEL", "Exception channel is required")
	}
	if strings.TrimSpace(log) == "" {
		return nil, shared.NewDomainError("INVALID_EXCEPTION_LOG", "Exception log cannot be empty")
	}
	return &ChannelException{
		BaseEntity: shared.NewBaseEntity(),
		Origin:     origin,
		ChannelID:  channelID,
		Log:        strings.TrimSpace(log),
	}, nil
}

// Resolve marks the exception as handled
func (e *ChannelException) Resolve(by uuid.UUID) error {
	if e.IsResolved {
		return ErrExceptionAlreadyResolved
	}
	now := time.Now()
	e.IsResolved = true
	e.ResolvedAt = &now
	e.ResolvedBy = &by
	e.UpdatedAt = now
	return nil
}

// VisibleExceptions returns the exceptions scoped to channelID, unresolved first.
// Within each group the creation order is kept.
func VisibleExceptions(exceptions []ChannelException, channelID uuid.UUID) []ChannelException {
	visible := make([]ChannelException, 0, len(exceptions))
	for _, e := range exceptions {
		if e.ChannelID == channelID {
			visible = append(visible, e)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].IsResolved != visible[j].IsResolved {
			return !visible[i].IsResolved
		}
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})
	return visible
}

// HasUnresolvedException reports whether any exception scoped to channelID is unresolved.
// It is a pure computation over already loaded exceptions.
func HasUnresolvedException(exceptions []ChannelException, channelID uuid.UUID) bool {
	for _, e := range exceptions {
		if e.ChannelID == channelID && !e.IsResolved {
			return true
		}
	}
	return false
}
