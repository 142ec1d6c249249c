package utils

import (
	"context"
	"errors"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"gorm.io/gorm"
)

/* DB fetching */

// fetch model from db by primary key
// (may return RecordNotFound)
func FetchModel[T any](ctx context.Context, id interface{}, associations ...string) (*T, error) {
	dbCtx := config.GetDB().WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// fetch all models, ordered by orderBy when given
func FetchAllModels[T any](ctx context.Context, orderBy string) ([]*T, error) {
	dbCtx := config.GetDB().WithContext(ctx)
	if orderBy != "" {
		dbCtx = dbCtx.Order(orderBy)
	}
	var results []*T
	if err := dbCtx.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
