package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ExchangeRate is a point-in-time conversion rate from Currency to EUR.
// Rates are fed by an external importer; settlement only reads them.
type ExchangeRate struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Currency  string       `gorm:"type:text;not null;index" json:"currency"`
	Rate      float64      `gorm:"not null" json:"rate"`
	AsOf      time.Time    `gorm:"not null;index" json:"as_of"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ExchangeRate) TableName() string { return "exchange_rates" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rate *ExchangeRate) error
	// FindEffectiveAt returns the newest rate for the currency at or before
	// the given time.
	FindEffectiveAt(ctx context.Context, db *gorm.DB, currency string, at time.Time) (*ExchangeRate, error)
}

var ErrRateNotFound = errors.New("exchange_rate_not_found")
