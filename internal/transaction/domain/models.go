package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
)

// Status values follow the gateway's transaction lifecycle.
const (
	StatusApproved   = "approved"
	StatusDeclined   = "declined"
	StatusRefunded   = "refunded"
	StatusChargeback = "chargeback"
)

// Transaction is one processed payment. AmountEurMinor is converted at
// capture time by the gateway; settlement aggregates over it.
type Transaction struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	MerchantID     snowflake.ID  `gorm:"not null;index" json:"merchant_id"`
	ShopID         *snowflake.ID `gorm:"index" json:"shop_id,omitempty"`
	Currency       string        `gorm:"type:text;not null" json:"currency"`
	AmountMinor    int64         `gorm:"not null" json:"amount_minor"`
	AmountEurMinor int64         `gorm:"not null" json:"amount_eur_minor"`
	Status         string        `gorm:"type:text;not null;index" json:"status"`
	ProcessedAt    time.Time     `gorm:"not null;index" json:"processed_at"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }

// AggregateProvider builds the engine's input summary for an entity + range.
type AggregateProvider interface {
	MerchantAggregate(ctx context.Context, merchantID snowflake.ID, period settlementdomain.DateRange) (settlementdomain.TransactionAggregate, error)
	ShopAggregate(ctx context.Context, shopID snowflake.ID, period settlementdomain.DateRange) (settlementdomain.TransactionAggregate, error)
}
