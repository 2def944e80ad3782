package shared

import "github.com/credisphere/credisphere/internal/platform/httpx"

// Pagination is the page window of a list request.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination clamps page and perPage to their defaults and limits and
// derives the page count from total.
func NewPagination(page, perPage, total int) Pagination {
	switch {
	case perPage <= 0:
		perPage = DefaultLimit
	case perPage > MaxLimit:
		perPage = MaxLimit
	}
	switch {
	case page <= 0:
		page = DefaultPage
	case page > MaxPage:
		page = MaxPage
	}
	p := Pagination{Page: page, PerPage: perPage, Total: total}
	if total > 0 {
		p.TotalPages = (total + perPage - 1) / perPage
	}
	return p
}

// Offset returns the row offset of the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Wire returns the form sent in list envelopes.
func (p Pagination) Wire() httpx.Pagination {
	return httpx.Pagination{Page: p.Page, PerPage: p.PerPage, Total: p.Total, TotalPages: p.TotalPages}
}
