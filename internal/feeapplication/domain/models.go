// Package domain contains the append-only fee application audit log. Rows
// are never updated or deleted by the engine; corrections are an external
// administrative action.
package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	"gorm.io/gorm"
)

// FeeApplication records one applied fee. The checksum carries the period
// bucket: the unique index on it is what makes concurrent or retried runs
// unable to double-charge monthly, yearly and one-time fees.
type FeeApplication struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	MerchantID        snowflake.ID  `gorm:"not null;index" json:"merchant_id"`
	ShopID            *snowflake.ID `gorm:"index" json:"shop_id,omitempty"`
	FeeTypeID         int64         `gorm:"not null;index" json:"fee_type_id"`
	BaseAmountMinor   int64         `gorm:"not null" json:"base_amount_minor"`
	BaseCurrency      string        `gorm:"type:text;not null" json:"base_currency"`
	FeeAmountEurMinor int64         `gorm:"not null" json:"fee_amount_eur_minor"`
	ExchangeRate      float64       `gorm:"not null" json:"exchange_rate"`
	AppliedAt         time.Time     `gorm:"not null;index" json:"applied_at"`
	Checksum          string        `gorm:"type:text;not null;uniqueIndex" json:"-"`
	CreatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (FeeApplication) TableName() string { return "fee_applications" }

// EntityRef addresses either a merchant (ShopID nil) or a single shop.
// Merchant-level history is scoped to rows with no shop.
type EntityRef struct {
	MerchantID snowflake.ID
	ShopID     *snowflake.ID
}

func MerchantRef(merchantID snowflake.ID) EntityRef {
	return EntityRef{MerchantID: merchantID}
}

func ShopRef(merchantID, shopID snowflake.ID) EntityRef {
	return EntityRef{MerchantID: merchantID, ShopID: &shopID}
}

func (e EntityRef) String() string {
	if e.ShopID != nil {
		return fmt.Sprintf("shop:%s", e.ShopID.String())
	}
	return fmt.Sprintf("merchant:%s", e.MerchantID.String())
}

// BucketFor maps a frequency and application date to the de-duplication
// bucket. Gated frequencies collapse to one bucket per period; the rest get
// the caller's run ID so every run produces a distinct row.
func BucketFor(freq feetypedomain.FrequencyType, appliedAt time.Time, runID string) string {
	at := appliedAt.UTC()
	switch freq {
	case feetypedomain.FrequencyOneTime:
		return "once"
	case feetypedomain.FrequencyMonthly:
		return at.Format("2006-01")
	case feetypedomain.FrequencyYearly:
		return at.Format("2006")
	default:
		return runID
	}
}

// Checksum derives the unique insert key for one fee application.
func Checksum(entity EntityRef, feeTypeID int64, bucket string) string {
	payload := fmt.Sprintf("%s|%d|%s", entity.String(), feeTypeID, bucket)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

type Repository interface {
	// Insert appends a record. It reports false when a record with the same
	// checksum already exists, in which case nothing is written.
	Insert(ctx context.Context, db *gorm.DB, record *FeeApplication) (bool, error)
	GetLast(ctx context.Context, db *gorm.DB, entity EntityRef, feeTypeID int64) (*FeeApplication, error)
	GetInRange(ctx context.Context, db *gorm.DB, entity EntityRef, feeTypeID int64, start, end time.Time) ([]FeeApplication, error)
	HasAny(ctx context.Context, db *gorm.DB, entity EntityRef) (bool, error)
	ListByMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID, limit int) ([]FeeApplication, error)
}
