package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"congregationhub/internal/domain"
)

// Pagination query parameter defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePagination reads page and page_size from the request query string and
// returns domain.PaginationParams. Invalid or missing values fall back to the
// defaults; page_size is capped at MaxPageSize.
func ParsePagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	pageSize := positiveIntParam(q.Get("page_size"), DefaultPageSize)
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return domain.PaginationParams{
		Page:     positiveIntParam(q.Get("page"), DefaultPage),
		PageSize: pageSize,
	}
}

func positiveIntParam(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// ParseTypeFilter reads the roster type query parameter, trimmed and lowered.
// Whether the value is one the roster accepts is the service's call.
func ParseTypeFilter(r *http.Request) domain.CheckInType {
	return domain.CheckInType(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))))
}

// PaginationMeta is the pagination metadata included in paginated list responses.
// swagger:model PaginationMeta
type PaginationMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginationMeta builds PaginationMeta from the current page, page size,
// and total count. TotalPages is ceiling(total / pageSize), 0 when pageSize
// is 0.
func NewPaginationMeta(page, pageSize, total int) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
