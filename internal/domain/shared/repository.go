package shared

// Filter carries the listing options repositories accept: an optional
// row cap and an ORDER BY column with direction. Repositories validate
// both against their own whitelists before building SQL.
type Filter struct {
	Limit    int
	OrderBy  string
	OrderDir string
}

// DefaultFilter lists newest rows first with no cap.
func DefaultFilter() Filter {
	return Filter{
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}
