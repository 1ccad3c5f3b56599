package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/shop/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, shop *domain.Shop) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO shops (id, merchant_id, external_id, name, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shop.ID,
		shop.MerchantID,
		shop.ExternalID,
		shop.Name,
		shop.Active,
		shop.CreatedAt,
		shop.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Shop, error) {
	var shop domain.Shop
	err := db.WithContext(ctx).Raw(
		`SELECT id, merchant_id, external_id, name, active, created_at, updated_at
		 FROM shops WHERE id = ?`,
		id,
	).Scan(&shop).Error
	if err != nil {
		return nil, err
	}
	if shop.ID == 0 {
		return nil, nil
	}
	return &shop, nil
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, externalID uuid.UUID, merchantID snowflake.ID) (*domain.Shop, error) {
	var shop domain.Shop
	err := db.WithContext(ctx).Raw(
		`SELECT id, merchant_id, external_id, name, active, created_at, updated_at
		 FROM shops WHERE external_id = ? AND merchant_id = ?`,
		externalID,
		merchantID,
	).Scan(&shop).Error
	if err != nil {
		return nil, err
	}
	if shop.ID == 0 {
		return nil, nil
	}
	return &shop, nil
}

func (r *repo) ListActiveByMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID) ([]domain.Shop, error) {
	var shops []domain.Shop
	err := db.WithContext(ctx).
		Model(&domain.Shop{}).
		Where("merchant_id = ? AND active = ?", merchantID, true).
		Order("id asc").
		Find(&shops).Error
	if err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *repo) InsertSettings(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	return db.WithContext(ctx).Create(settings).Error
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, shopID snowflake.ID) (*domain.Settings, error) {
	var settings domain.Settings
	err := db.WithContext(ctx).
		Model(&domain.Settings{}).
		Where("shop_id = ?", shopID).
		First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) UpdateSetupFeeCharged(ctx context.Context, db *gorm.DB, shopID snowflake.ID, charged bool) error {
	return db.WithContext(ctx).Exec(
		`UPDATE shop_settings SET setup_fee_charged = ?, updated_at = ? WHERE shop_id = ?`,
		charged,
		time.Now().UTC(),
		shopID,
	).Error
}
