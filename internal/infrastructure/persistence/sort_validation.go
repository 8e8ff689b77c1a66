package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a requested sort direction to ASC or DESC.
// Anything unrecognized falls back to DESC so listings default to newest
// first.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a requested sort column against a whitelist.
// Column names reach the ORDER BY clause verbatim, so only whitelisted
// values may pass through. Unknown or empty input yields the default.
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

// ExpeditionSortFields lists the expedition columns a caller may sort by.
var ExpeditionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"status":     true,
	"deadline":   true,
}
