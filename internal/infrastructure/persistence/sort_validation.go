package persistence

import (
	"strings"
)

// CustomerSortFields are the columns customer listings may sort by.
// Anything else falls back to the caller's default, so user input can
// never reach the ORDER BY clause verbatim.
var CustomerSortFields = map[string]bool{
	"id":                  true,
	"created_at":          true,
	"updated_at":          true,
	"name":                true,
	"balance":             true,
	"hourly_debit_amount": true,
	"last_debited_at":     true,
}

// ValidateSortField returns sortField when the whitelist allows it,
// otherwise defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed != "" && allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ValidateSortOrder normalizes a sort direction to ASC or DESC,
// defaulting to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}
