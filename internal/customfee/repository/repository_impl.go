package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/customfee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, fee *domain.CustomFee) error {
	return db.WithContext(ctx).Create(fee).Error
}

func (r *repo) ListActiveForMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID, asOf time.Time) ([]domain.CustomFee, error) {
	var fees []domain.CustomFee
	err := db.WithContext(ctx).Raw(
		`SELECT id, merchant_id, shop_id, fee_type_id, fee_type, is_percentage, frequency,
		        amount_minor, valid_from, valid_to, active, created_at
		 FROM custom_fees
		 WHERE merchant_id = ? AND shop_id IS NULL AND active = ?
		 AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)
		 ORDER BY id ASC`,
		merchantID,
		true,
		asOf,
		asOf,
	).Scan(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

func (r *repo) ListActiveForShop(ctx context.Context, db *gorm.DB, shopID snowflake.ID, asOf time.Time) ([]domain.CustomFee, error) {
	var fees []domain.CustomFee
	err := db.WithContext(ctx).Raw(
		`SELECT id, merchant_id, shop_id, fee_type_id, fee_type, is_percentage, frequency,
		        amount_minor, valid_from, valid_to, active, created_at
		 FROM custom_fees
		 WHERE shop_id = ? AND active = ?
		 AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)
		 ORDER BY id ASC`,
		shopID,
		true,
		asOf,
		asOf,
	).Scan(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}
