package service

import (
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
)

// calculator turns a configured minor-unit amount and a transaction
// aggregate into an EUR fee amount. Implementations are stateless.
type calculator interface {
	Calculate(agg settlementdomain.TransactionAggregate, configuredMinor int64) float64
}

// calculatorFor maps a fee key to its calculation rule. The semantics are
// key-specific, not derived from the percentage flag alone: MDR applies
// basis points to EUR sales volume, per-event fees multiply by the matching
// aggregate count, the rest are flat charges. Unrecognized keys calculate
// to zero.
func calculatorFor(key feetypedomain.FeeKey) calculator {
	switch key {
	case feetypedomain.FeeKeyMDR:
		return salesPercentageCalculator{}
	case feetypedomain.FeeKeyTransaction:
		return perEventCalculator{count: func(agg settlementdomain.TransactionAggregate) int64 { return agg.SalesCount }}
	case feetypedomain.FeeKeyRefund:
		return perEventCalculator{count: func(agg settlementdomain.TransactionAggregate) int64 { return agg.RefundCount }}
	case feetypedomain.FeeKeyDeclined:
		return perEventCalculator{count: func(agg settlementdomain.TransactionAggregate) int64 { return agg.DeclinedCount }}
	case feetypedomain.FeeKeyChargeback:
		return perEventCalculator{count: func(agg settlementdomain.TransactionAggregate) int64 { return agg.ChargebackCount }}
	case feetypedomain.FeeKeyPayout,
		feetypedomain.FeeKeyMonthly,
		feetypedomain.FeeKeyMastercardHighRisk,
		feetypedomain.FeeKeyVisaHighRisk,
		feetypedomain.FeeKeySetup:
		return flatCalculator{}
	default:
		return zeroCalculator{}
	}
}

// salesPercentageCalculator applies a basis-point rate to EUR sales volume
// (500 = 5.00%).
type salesPercentageCalculator struct{}

func (salesPercentageCalculator) Calculate(agg settlementdomain.TransactionAggregate, configuredMinor int64) float64 {
	return agg.TotalSalesAmountEur * float64(configuredMinor) / 10000
}

// perEventCalculator charges a fixed cent amount per matching event.
type perEventCalculator struct {
	count func(agg settlementdomain.TransactionAggregate) int64
}

func (c perEventCalculator) Calculate(agg settlementdomain.TransactionAggregate, configuredMinor int64) float64 {
	return float64(configuredMinor) / 100 * float64(c.count(agg))
}

// flatCalculator charges the configured cent amount regardless of volume.
type flatCalculator struct{}

func (flatCalculator) Calculate(_ settlementdomain.TransactionAggregate, configuredMinor int64) float64 {
	return float64(configuredMinor) / 100
}

type zeroCalculator struct{}

func (zeroCalculator) Calculate(settlementdomain.TransactionAggregate, int64) float64 { return 0 }
