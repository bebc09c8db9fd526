package shared

// List paging limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery is the paging, ordering and free-text part of a list request.
// OrderBy names a logical sort key; repositories map it to a column.
type ListQuery struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// Normalized returns q with defaults applied: first page, DefaultPageSize,
// newest first. PageSize is capped at MaxPageSize.
func (q ListQuery) Normalized() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	switch {
	case q.PageSize < 1:
		q.PageSize = DefaultPageSize
	case q.PageSize > MaxPageSize:
		q.PageSize = MaxPageSize
	}
	if q.OrderBy == "" {
		q.OrderBy = "created_at"
	}
	if q.OrderDir == "" {
		q.OrderDir = "desc"
	}
	return q
}

// Offset is the number of rows before the requested page
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}
