package repository

import (
	"context"
	"time"

	"github.com/clearvia/payops/internal/exchangerate/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rate *domain.ExchangeRate) error {
	return db.WithContext(ctx).Create(rate).Error
}

func (r *repo) FindEffectiveAt(ctx context.Context, db *gorm.DB, currency string, at time.Time) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	err := db.WithContext(ctx).Raw(
		`SELECT id, currency, rate, as_of, created_at
		 FROM exchange_rates
		 WHERE currency = ? AND as_of <= ?
		 ORDER BY as_of DESC, id DESC
		 LIMIT 1`,
		currency,
		at,
	).Scan(&rate).Error
	if err != nil {
		return nil, err
	}
	if rate.ID == 0 {
		return nil, nil
	}
	return &rate, nil
}
