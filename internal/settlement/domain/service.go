package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// Service is the settlement fee engine. CalculateMerchantFees degrades to an
// empty list on missing settings and swallows per-item errors;
// CalculateShopFees logs and returns orchestration errors so a broken shop
// settlement is never reported as zero fees.
type Service interface {
	CalculateMerchantFees(ctx context.Context, merchantID snowflake.ID, aggregate TransactionAggregate, period DateRange) ([]CalculatedFee, error)
	CalculateShopFees(ctx context.Context, merchantAccountID, externalShopID uuid.UUID, aggregate TransactionAggregate, period DateRange) ([]CalculatedFee, error)
}

var (
	ErrInvalidPeriod    = errors.New("invalid_settlement_period")
	ErrMerchantNotFound = errors.New("merchant_not_found")
	ErrShopNotFound     = errors.New("shop_not_found")
)
