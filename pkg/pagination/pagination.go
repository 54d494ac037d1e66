// Package pagination provides page/limit normalization for list endpoints.
package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// Page describes a normalized page request.
type Page struct {
	Number int
	Limit  int
}

// Normalize clamps raw page/limit input into a valid Page.
func Normalize(page, limit int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: page, Limit: limit}
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages returns the page count for the given total row count.
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}
