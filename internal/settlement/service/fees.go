package service

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	customfeedomain "github.com/clearvia/payops/internal/customfee/domain"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
)

// standardFees assembles the full system fee bundle for an entity, in
// catalog order, before any frequency filtering. Zero-amount fees stay in
// the list; only the condition-gated high-risk fees and an already-charged
// setup fee are omitted.
func (s *Service) standardFees(
	settings settlementdomain.FeeSettings,
	agg settlementdomain.TransactionAggregate,
	includeSetup bool,
	shopID *snowflake.ID,
) []settlementdomain.CalculatedFee {
	defs := s.registry.All()
	fees := make([]settlementdomain.CalculatedFee, 0, len(defs))

	for _, def := range defs {
		configured := settings.AmountFor(def.Key)

		if def.Key == feetypedomain.FeeKeySetup && !includeSetup {
			continue
		}
		if cond := s.registry.ConditionFor(def.Key); cond != nil && !cond(configured) {
			continue
		}

		amount := calculatorFor(def.Key).Calculate(agg, configured)
		fees = append(fees, settlementdomain.CalculatedFee{
			FeeType:      string(def.Key),
			FeeTypeID:    def.FeeTypeID,
			FeeRate:      formatRate(def.IsPercentage, configured),
			FeeAmount:    amount,
			Currency:     agg.Currency,
			ExchangeRate: agg.ExchangeRate,
			Frequency:    def.Frequency,
			IsPercentage: def.IsPercentage,
			ShopID:       shopID,
		})
	}

	return fees
}

// customFee turns one override row into a fee line-item. Overrides with a
// standard key reuse the standard calculation rule; unrecognized keys
// calculate to zero at the registry boundary.
func customFee(
	fee customfeedomain.CustomFee,
	agg settlementdomain.TransactionAggregate,
	shopID *snowflake.ID,
) settlementdomain.CalculatedFee {
	key := feetypedomain.FeeKey(fee.FeeType)
	amount := calculatorFor(key).Calculate(agg, fee.AmountMinor)
	return settlementdomain.CalculatedFee{
		FeeType:      fee.FeeType,
		FeeTypeID:    fee.FeeTypeID,
		FeeRate:      formatRate(fee.IsPercentage, fee.AmountMinor),
		FeeAmount:    amount,
		Currency:     agg.Currency,
		ExchangeRate: agg.ExchangeRate,
		Frequency:    fee.Frequency,
		IsPercentage: fee.IsPercentage,
		ShopID:       shopID,
	}
}

// formatRate renders the configured amount for report layout: basis points
// as "5.25%", cents as "1500.00".
func formatRate(isPercentage bool, configuredMinor int64) string {
	if isPercentage {
		return fmt.Sprintf("%.2f%%", float64(configuredMinor)/100)
	}
	return fmt.Sprintf("%.2f", float64(configuredMinor)/100)
}
