// Package domain defines the settlement fee engine contract: the aggregate
// input, the calculated fee line-item output, and the two engine operations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
)

// DateRange is the half-open settlement window [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TransactionAggregate summarises an entity's processed volume for one date
// range. It is computed outside the engine and treated as immutable for the
// duration of a calculation.
type TransactionAggregate struct {
	Currency            string
	ExchangeRate        float64
	TotalSalesAmount    float64 // native currency, major units
	TotalSalesAmountEur float64
	SalesCount          int64
	RefundCount         int64
	DeclinedCount       int64
	ChargebackCount     int64
}

// CalculatedFee is one fee line-item. FeeAmount is EUR major units; FeeRate
// is pre-formatted for report layout ("5.25%" or "1500.00").
type CalculatedFee struct {
	FeeType      string                      `json:"fee_type"`
	FeeTypeID    int64                       `json:"fee_type_id"`
	FeeRate      string                      `json:"fee_rate"`
	FeeAmount    float64                     `json:"fee_amount"`
	Currency     string                      `json:"currency"`
	ExchangeRate float64                     `json:"exchange_rate"`
	Frequency    feetypedomain.FrequencyType `json:"frequency"`
	IsPercentage bool                        `json:"is_percentage"`
	ShopID       *snowflake.ID               `json:"shop_id,omitempty"`
}

// FeeSettings is the view of an entity's settings the fee handlers need.
// Merchant and shop settings both satisfy it.
type FeeSettings interface {
	AmountFor(key feetypedomain.FeeKey) int64
	SetupCharged() bool
}
