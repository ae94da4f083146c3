package domain

// Page bounds for ranked lookups.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PaginationParams carries page/limit values from the HTTP layer to any
// ranked listing. Page is 1-indexed. Limit is capped at MaxPageLimit by
// NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil or non-positive values fall back to page=1 and limit=DefaultPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Window returns the [start, end) slice bounds of the page within total items.
// Pages past the end yield an empty window, however large the page number.
func (p PaginationParams) Window(total int) (start, end int) {
	if p.Page < 1 || p.Limit < 1 || p.Page-1 > total/p.Limit {
		return total, total
	}
	start = min((p.Page-1)*p.Limit, total)
	end = min(start+p.Limit, total)
	return start, end
}
