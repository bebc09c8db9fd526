package persistence

import (
	"strings"
)

// sortColumns whitelists the columns a list query may be ordered by
type sortColumns struct {
	table    string
	allowed  map[string]bool
	fallback string
}

var salesOrderSort = sortColumns{
	table: "sales_orders",
	allowed: map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"order_number": true,
		"channel_id":   true,
		"party_id":     true,
		"status":       true,
		"total_amount": true,
		"line_count":   true,
	},
	fallback: "created_at",
}

// orderBy builds the ORDER BY clause for user supplied field and direction.
// Unknown fields sort by the fallback column and any direction other than
// asc sorts descending. Ties are broken by id so pages never overlap.
func (s sortColumns) orderBy(field, dir string) string {
	column := strings.ToLower(strings.TrimSpace(field))
	if !s.allowed[column] {
		column = s.fallback
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		direction = "ASC"
	}
	return s.table + "." + column + " " + direction + ", " + s.table + ".id " + direction
}
