package repository

import (
	"context"

	"github.com/clearvia/payops/internal/feetype/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.FeeType, error) {
	var types []domain.FeeType
	err := db.WithContext(ctx).Raw(
		`SELECT id, key, name, is_percentage, frequency, position, created_at
		 FROM fee_types
		 ORDER BY position ASC, id ASC`,
	).Scan(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}
