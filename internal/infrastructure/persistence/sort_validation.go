package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// RawGoldLotSortFields contains allowed sort fields for raw gold lots
var RawGoldLotSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"purchase_order_id": true,
	"branch_id":         true,
	"karat_type":        true,
	"weight_ordered":    true,
	"weight_received":   true,
	"weight_consumed":   true,
}

// ManufacturingRecordSortFields contains allowed sort fields for manufacturing records
var ManufacturingRecordSortFields = map[string]bool{
	"id":                        true,
	"created_at":                true,
	"updated_at":                true,
	"batch_number":              true,
	"product_id":                true,
	"branch_id":                 true,
	"status":                    true,
	"priority":                  true,
	"quantity_to_produce":       true,
	"consumed_weight":           true,
	"total_cost":                true,
	"estimated_completion_date": true,
}
