package shared

// Filter carries listing options shared by the query-side repository methods.
// Handlers fill it from query parameters; repositories translate it into
// LIMIT/OFFSET and keep their own fixed ordering.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}
