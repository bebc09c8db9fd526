package persistence

import (
	"github.com/erp/channelsync/internal/domain/integration"
	"gorm.io/gorm"
)

// unresolvedExceptionExists matches unresolved exceptions raised against the
// current sales_orders row in that row's own channel.
const unresolvedExceptionExists = `SELECT 1 FROM channel_exceptions ce ` +
	`WHERE ce.origin_type = ? AND ce.origin_id = sales_orders.id ` +
	`AND ce.channel_id = sales_orders.channel_id AND ce.is_resolved = ?`

// ExceptionStateScope filters sales orders on their channel exception state.
// true keeps orders with at least one unresolved exception in their channel;
// false keeps the rest (no exception, or only resolved ones, or only exceptions
// from other channels). Both sides together return every order exactly once.
func ExceptionStateScope(hasUnresolved bool) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if hasUnresolved {
			return db.Where("EXISTS ("+unresolvedExceptionExists+")", integration.OriginTypeSalesOrder, false)
		}
		return db.Where("NOT EXISTS ("+unresolvedExceptionExists+")", integration.OriginTypeSalesOrder, false)
	}
}
