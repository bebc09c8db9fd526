package trade

import (
	"strings"

	"github.com/erp/channelsync/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesPayment is a payment recorded against a sales order
type SalesPayment struct {
	shared.BaseEntity
	OrderID   uuid.UUID
	Amount    decimal.Decimal
	Method    string
	Reference string
}

// NewSalesPayment creates a payment for an order
func NewSalesPayment(orderID uuid.UUID, amount decimal.Decimal, method, reference string) (*SalesPayment, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method cannot be empty")
	}
	return &SalesPayment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    orderID,
		Amount:     amount,
		Method:     method,
		Reference:  strings.TrimSpace(reference),
	}, nil
}
