// Package domain defines the fee-type catalog models.
package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// FrequencyType classifies the billing cadence of a fee.
type FrequencyType string

const (
	FrequencyTransaction FrequencyType = "transaction"
	FrequencyDaily       FrequencyType = "daily"
	FrequencyWeekly      FrequencyType = "weekly"
	FrequencyMonthly     FrequencyType = "monthly"
	FrequencyYearly      FrequencyType = "yearly"
	FrequencyOneTime     FrequencyType = "one_time"
)

// FeeKey is the stable identifier of a standard fee. The set is closed;
// anything outside it is a custom fee and falls back to a zero calculator.
type FeeKey string

const (
	FeeKeyMDR                FeeKey = "mdr_fee"
	FeeKeyTransaction        FeeKey = "transaction_fee"
	FeeKeyPayout             FeeKey = "payout_fee"
	FeeKeyRefund             FeeKey = "refund_fee"
	FeeKeyDeclined           FeeKey = "declined_fee"
	FeeKeyChargeback         FeeKey = "chargeback_fee"
	FeeKeyMonthly            FeeKey = "monthly_fee"
	FeeKeyMastercardHighRisk FeeKey = "mastercard_high_risk_fee"
	FeeKeyVisaHighRisk       FeeKey = "visa_high_risk_fee"
	FeeKeySetup              FeeKey = "setup_fee"
)

// FeeType is the persisted catalog row. Position drives the stable ordering
// of the registry, which in turn drives fee ordering in settlement reports.
type FeeType struct {
	ID           int64         `gorm:"primaryKey"`
	Key          string        `gorm:"type:text;not null;uniqueIndex"`
	Name         string        `gorm:"type:text;not null"`
	IsPercentage bool          `gorm:"not null"`
	Frequency    FrequencyType `gorm:"type:text;not null"`
	Position     int           `gorm:"not null"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (FeeType) TableName() string { return "fee_types" }

// FeeTypeDefinition is the immutable in-memory catalog entry.
type FeeTypeDefinition struct {
	Key          FeeKey
	Name         string
	IsPercentage bool
	Frequency    FrequencyType
	FeeTypeID    int64
}

// Condition gates a fee on its configured amount. Only the two high-risk
// scheme fees carry one.
type Condition func(configuredMinor int64) bool

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]FeeType, error)
}

var (
	ErrEmptyKey     = errors.New("empty_fee_key")
	ErrEmptyCatalog = errors.New("empty_fee_catalog")
)
