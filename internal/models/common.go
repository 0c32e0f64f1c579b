package models

// Pagination selects one page of an in-memory listing.
type Pagination struct {
	Page     int
	PageSize int
}

// DefaultPagination returns default pagination settings.
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 25,
	}
}

// Offset returns the index of the first row of the current page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		p.Page = 1
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size, clamped to 1..100.
func (p Pagination) Limit() int {
	if p.PageSize < 1 {
		return 25
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// TotalPages calculates the total number of pages, at least 1.
func (p Pagination) TotalPages(total int) int {
	limit := p.Limit()
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

// Clamp moves the page into 1..TotalPages(total).
func (p Pagination) Clamp(total int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if last := p.TotalPages(total); p.Page > last {
		p.Page = last
	}
	return p
}

// Bounds returns the [start, end) slice bounds of the current page for a
// listing of total rows.
func (p Pagination) Bounds(total int) (start, end int) {
	p = p.Clamp(total)
	start = p.Offset()
	if start > total {
		start = total
	}
	end = start + p.Limit()
	if end > total {
		end = total
	}
	return start, end
}

// Page returns the rows of the current page.
func Page[T any](rows []T, p Pagination) []T {
	start, end := p.Bounds(len(rows))
	return rows[start:end]
}
