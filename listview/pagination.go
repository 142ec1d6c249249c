package listview

import "math"

const (
	DefaultLimit = 50
	MaxLimit     = 500

	// MaxPage keeps (page-1)*limit inside int for every allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// Pagination is the envelope clients read next to every paginated list.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// NormalizePage clamps page to [1, MaxPage] and limit to [1, MaxLimit].
func NormalizePage(page, limit int) (int, int) {
	switch {
	case page <= 0:
		page = 1
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case limit > MaxLimit:
		limit = MaxLimit
	case limit <= 0:
		limit = DefaultLimit
	}
	return page, limit
}

func NewPagination(page, limit, total int) Pagination {
	page, limit = NormalizePage(page, limit)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Paginate slices an already ordered list.
func Paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	p := NewPagination(page, limit, len(items))
	if p.Page > p.TotalPages {
		return []T{}, p
	}
	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], p
}
