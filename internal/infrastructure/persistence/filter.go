package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/goldpos/backend/internal/domain/shared"
)

// applyFilter applies pagination and ordering from a shared.Filter to a query.
// The sort field is validated against the repository's allowlist so a
// caller-supplied order_by can never reach the SQL text.
func applyFilter(query *gorm.DB, filter shared.Filter, allowedSortFields map[string]bool) *gorm.DB {
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, allowedSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	return query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))
}
