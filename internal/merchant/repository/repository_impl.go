package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/merchant/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, merchant *domain.Merchant) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO merchants (id, account_id, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		merchant.ID,
		merchant.AccountID,
		merchant.Name,
		merchant.Active,
		merchant.CreatedAt,
		merchant.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Merchant, error) {
	var merchant domain.Merchant
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, name, active, created_at, updated_at
		 FROM merchants WHERE id = ?`,
		id,
	).Scan(&merchant).Error
	if err != nil {
		return nil, err
	}
	if merchant.ID == 0 {
		return nil, nil
	}
	return &merchant, nil
}

func (r *repo) FindByAccountID(ctx context.Context, db *gorm.DB, accountID uuid.UUID) (*domain.Merchant, error) {
	var merchant domain.Merchant
	err := db.WithContext(ctx).Raw(
		`SELECT id, account_id, name, active, created_at, updated_at
		 FROM merchants WHERE account_id = ?`,
		accountID,
	).Scan(&merchant).Error
	if err != nil {
		return nil, err
	}
	if merchant.ID == 0 {
		return nil, nil
	}
	return &merchant, nil
}

func (r *repo) InsertSettings(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	return db.WithContext(ctx).Create(settings).Error
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, merchantID snowflake.ID) (*domain.Settings, error) {
	var settings domain.Settings
	err := db.WithContext(ctx).
		Model(&domain.Settings{}).
		Where("merchant_id = ?", merchantID).
		First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) UpdateSetupFeeCharged(ctx context.Context, db *gorm.DB, merchantID snowflake.ID, charged bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE merchant_settings SET setup_fee_charged = ?, updated_at = ? WHERE merchant_id = ?`,
		charged,
		time.Now().UTC(),
		merchantID,
	).Error
}
