package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortColumns_OrderBy(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		dir      string
		expected string
	}{
		{"defaults", "", "", "sales_orders.created_at DESC, sales_orders.id DESC"},
		{"allowed field ascending", "order_number", "asc", "sales_orders.order_number ASC, sales_orders.id ASC"},
		{"case and whitespace are ignored", "  Status ", " ASC ", "sales_orders.status ASC, sales_orders.id ASC"},
		{"unknown field falls back", "password", "asc", "sales_orders.created_at ASC, sales_orders.id ASC"},
		{"injection in field falls back", "id; DROP TABLE sales_orders;--", "desc", "sales_orders.created_at DESC, sales_orders.id DESC"},
		{"injection in direction sorts descending", "status", "ASC; DROP TABLE sales_orders;--", "sales_orders.status DESC, sales_orders.id DESC"},
		{"channel identifier is not sortable", "channel_identifier", "asc", "sales_orders.created_at ASC, sales_orders.id ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, salesOrderSort.orderBy(tt.field, tt.dir))
		})
	}
}
