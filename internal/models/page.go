package models

import "math"

// Pagination is a normalized page request.
type Pagination struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// NewPagination clamps page and limit to sane values.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageLimit {
		limit = DefaultPageLimit
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Skip() int64 { return int64((p.Page - 1) * p.Limit) }

type PageMeta struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMeta(p Pagination, total int64) PageMeta {
	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return PageMeta{
		CurrentPage:     p.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		ItemsPerPage:    p.Limit,
		HasNextPage:     p.Page < totalPages,
		HasPreviousPage: p.Page > 1,
	}
}

// FeedPage is one page of annotated posts.
type FeedPage struct {
	Posts []PostView `json:"posts"`
	Meta  PageMeta   `json:"meta"`
}
