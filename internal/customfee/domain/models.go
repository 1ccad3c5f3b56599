package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	"gorm.io/gorm"
)

// CustomFee is a merchant- or shop-specific fee override configured outside
// the standard catalog. Frequency and percentage semantics are snapshotted at
// configuration time so later catalog edits never change historical billing.
type CustomFee struct {
	ID           snowflake.ID                `gorm:"primaryKey" json:"id"`
	MerchantID   snowflake.ID                `gorm:"not null;index" json:"merchant_id"`
	ShopID       *snowflake.ID               `gorm:"index" json:"shop_id,omitempty"`
	FeeTypeID    int64                       `gorm:"not null" json:"fee_type_id"`
	FeeType      string                      `gorm:"type:text;not null" json:"fee_type"`
	IsPercentage bool                        `gorm:"not null" json:"is_percentage"`
	Frequency    feetypedomain.FrequencyType `gorm:"type:text;not null" json:"frequency"`
	AmountMinor  int64                       `gorm:"not null" json:"amount_minor"`
	ValidFrom    time.Time                   `gorm:"not null" json:"valid_from"`
	ValidTo      *time.Time                  `json:"valid_to,omitempty"`
	Active       bool                        `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (CustomFee) TableName() string { return "custom_fees" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, fee *CustomFee) error
	// ListActiveForMerchant returns merchant-level overrides (shop_id IS NULL)
	// valid at the given date.
	ListActiveForMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID, asOf time.Time) ([]CustomFee, error)
	ListActiveForShop(ctx context.Context, db *gorm.DB, shopID snowflake.ID, asOf time.Time) ([]CustomFee, error)
}
