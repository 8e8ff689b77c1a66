package shared

// Filter carries the paging, ordering and filtering options a caller
// passes down to repository list queries. Filters holds column/value
// pairs; each repository decides which keys it honors.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
