package common

import (
	"net/http"
	"strconv"
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and limit query parameters, clamping limit to max.
func ParsePagination(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

// Window returns the [start, end) slice bounds for the page within total items.
func (p Pagination) Window() (start, end int) {
	if p.PerPage <= 0 || p.Page <= 0 {
		return 0, p.TotalItems
	}
	start = (p.Page - 1) * p.PerPage
	if start > p.TotalItems {
		start = p.TotalItems
	}
	end = start + p.PerPage
	if end > p.TotalItems {
		end = p.TotalItems
	}
	return start, end
}
