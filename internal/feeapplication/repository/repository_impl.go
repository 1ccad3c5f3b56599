package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/feeapplication/domain"
	pkgdb "github.com/clearvia/payops/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.FeeApplication) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO fee_applications (
			id, merchant_id, shop_id, fee_type_id, base_amount_minor, base_currency,
			fee_amount_eur_minor, exchange_rate, applied_at, checksum, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (checksum) DO NOTHING`,
		record.ID,
		record.MerchantID,
		record.ShopID,
		record.FeeTypeID,
		record.BaseAmountMinor,
		record.BaseCurrency,
		record.FeeAmountEurMinor,
		record.ExchangeRate,
		record.AppliedAt,
		record.Checksum,
		record.CreatedAt,
	)
	if res.Error != nil {
		if pkgdb.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) GetLast(ctx context.Context, db *gorm.DB, entity domain.EntityRef, feeTypeID int64) (*domain.FeeApplication, error) {
	var record domain.FeeApplication
	stmt := scopeEntity(db.WithContext(ctx).Model(&domain.FeeApplication{}), entity).
		Where("fee_type_id = ?", feeTypeID).
		Order("applied_at desc, id desc")
	err := stmt.First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *repo) GetInRange(ctx context.Context, db *gorm.DB, entity domain.EntityRef, feeTypeID int64, start, end time.Time) ([]domain.FeeApplication, error) {
	var records []domain.FeeApplication
	stmt := scopeEntity(db.WithContext(ctx).Model(&domain.FeeApplication{}), entity).
		Where("fee_type_id = ?", feeTypeID).
		Where("applied_at >= ? AND applied_at < ?", start, end).
		Order("applied_at asc, id asc")
	err := stmt.Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) HasAny(ctx context.Context, db *gorm.DB, entity domain.EntityRef) (bool, error) {
	var count int64
	err := scopeEntity(db.WithContext(ctx).Model(&domain.FeeApplication{}), entity).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListByMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID, limit int) ([]domain.FeeApplication, error) {
	var records []domain.FeeApplication
	stmt := db.WithContext(ctx).
		Model(&domain.FeeApplication{}).
		Where("merchant_id = ?", merchantID).
		Order("applied_at desc, id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func scopeEntity(stmt *gorm.DB, entity domain.EntityRef) *gorm.DB {
	if entity.ShopID != nil {
		return stmt.Where("shop_id = ?", *entity.ShopID)
	}
	return stmt.Where("merchant_id = ? AND shop_id IS NULL", entity.MerchantID)
}
