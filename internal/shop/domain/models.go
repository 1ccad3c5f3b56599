package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is a merchant's selling unit. ExternalID is the identifier used by
// the gateway side; settlement resolves it to the internal snowflake ID.
type Shop struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	MerchantID snowflake.ID `gorm:"not null;index" json:"merchant_id"`
	ExternalID uuid.UUID    `gorm:"type:text;not null;uniqueIndex" json:"external_id"`
	Name       string       `gorm:"not null" json:"name"`
	Active     bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Shop) TableName() string { return "shops" }

// Settings mirrors merchant settings at shop granularity. Amounts are minor
// units (cents, or basis points for percentage fees).
type Settings struct {
	ID                         snowflake.ID `gorm:"primaryKey" json:"id"`
	ShopID                     snowflake.ID `gorm:"not null;uniqueIndex" json:"shop_id"`
	RollingReserveBps          int64        `gorm:"not null;default:0" json:"rolling_reserve_bps"`
	HoldingPeriodDays          int          `gorm:"not null;default:0" json:"holding_period_days"`
	MDRFeeBps                  int64        `gorm:"column:mdr_fee_bps;not null;default:0" json:"mdr_fee_bps"`
	TransactionFeeMinor        int64        `gorm:"not null;default:0" json:"transaction_fee_minor"`
	PayoutFeeMinor             int64        `gorm:"not null;default:0" json:"payout_fee_minor"`
	RefundFeeMinor             int64        `gorm:"not null;default:0" json:"refund_fee_minor"`
	DeclinedFeeMinor           int64        `gorm:"not null;default:0" json:"declined_fee_minor"`
	ChargebackFeeMinor         int64        `gorm:"not null;default:0" json:"chargeback_fee_minor"`
	MonthlyFeeMinor            int64        `gorm:"not null;default:0" json:"monthly_fee_minor"`
	MastercardHighRiskFeeMinor int64        `gorm:"not null;default:0" json:"mastercard_high_risk_fee_minor"`
	VisaHighRiskFeeMinor       int64        `gorm:"not null;default:0" json:"visa_high_risk_fee_minor"`
	SetupFeeMinor              int64        `gorm:"not null;default:0" json:"setup_fee_minor"`
	SetupFeeCharged            bool         `gorm:"not null;default:false" json:"setup_fee_charged"`
	Active                     bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt                  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt                  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Settings) TableName() string { return "shop_settings" }

// AmountFor maps a standard fee key to its configured minor-unit amount.
func (s Settings) AmountFor(key feetypedomain.FeeKey) int64 {
	switch key {
	case feetypedomain.FeeKeyMDR:
		return s.MDRFeeBps
	case feetypedomain.FeeKeyTransaction:
		return s.TransactionFeeMinor
	case feetypedomain.FeeKeyPayout:
		return s.PayoutFeeMinor
	case feetypedomain.FeeKeyRefund:
		return s.RefundFeeMinor
	case feetypedomain.FeeKeyDeclined:
		return s.DeclinedFeeMinor
	case feetypedomain.FeeKeyChargeback:
		return s.ChargebackFeeMinor
	case feetypedomain.FeeKeyMonthly:
		return s.MonthlyFeeMinor
	case feetypedomain.FeeKeyMastercardHighRisk:
		return s.MastercardHighRiskFeeMinor
	case feetypedomain.FeeKeyVisaHighRisk:
		return s.VisaHighRiskFeeMinor
	case feetypedomain.FeeKeySetup:
		return s.SetupFeeMinor
	default:
		return 0
	}
}

// SetupCharged reports whether the one-time setup fee was already applied.
func (s Settings) SetupCharged() bool { return s.SetupFeeCharged }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, shop *Shop) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Shop, error)
	// FindByExternalID resolves a gateway shop ID scoped to its merchant.
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID uuid.UUID, merchantID snowflake.ID) (*Shop, error)
	ListActiveByMerchant(ctx context.Context, db *gorm.DB, merchantID snowflake.ID) ([]Shop, error)
	InsertSettings(ctx context.Context, db *gorm.DB, settings *Settings) error
	FindSettings(ctx context.Context, db *gorm.DB, shopID snowflake.ID) (*Settings, error)
	UpdateSetupFeeCharged(ctx context.Context, db *gorm.DB, shopID snowflake.ID, charged bool) error
}

var (
	ErrShopNotFound     = errors.New("shop_not_found")
	ErrSettingsNotFound = errors.New("shop_settings_not_found")
)
