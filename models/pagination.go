package models

import (
	"bitbucket.org/rodmar/rodmar_backend/listview"
	"gorm.io/gorm"
)

// PaginatedResult is the {data, pagination} envelope of every list endpoint.
type PaginatedResult[T any] struct {
	Data       []T                 `json:"data"`
	Pagination listview.Pagination `json:"pagination"`
}

// Paginate limits a query to one page. page and limit are normalized first.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	page, limit = listview.NormalizePage(page, limit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// paginateQuery counts query, then fetches one page of it in order.
func paginateQuery[T any](query *gorm.DB, order string, page, limit int) (*PaginatedResult[T], error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	results := make([]T, 0)
	if err := query.Session(&gorm.Session{}).Order(order).Scopes(Paginate(page, limit)).Find(&results).Error; err != nil {
		return nil, err
	}
	return &PaginatedResult[T]{
		Data:       results,
		Pagination: listview.NewPagination(page, limit, int(total)),
	}, nil
}
