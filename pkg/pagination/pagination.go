package pagination

const (
	// DefaultPerPage is the standard page size when a limit is not provided.
	// It matches the storefront's product grid.
	DefaultPerPage = 6
	// MaxPerPage caps how many rows any paginated query can request.
	MaxPerPage = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize clamps the page to 1..n and the page size to its bounds.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// TotalPages computes how many pages the given row count spans.
func TotalPages(total int64, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 0
	}
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return pages
}
