package service

import (
	"testing"

	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"github.com/stretchr/testify/assert"
)

func TestCalculatorFor_MDRAppliesBasisPointsToEurVolume(t *testing.T) {
	agg := settlementdomain.TransactionAggregate{
		TotalSalesAmountEur: 10000.00,
	}

	// 500 bp = 5.00% of EUR 10 000 = EUR 500
	got := calculatorFor(feetypedomain.FeeKeyMDR).Calculate(agg, 500)
	assert.InDelta(t, 500.00, got, 0.0001)
}

func TestCalculatorFor_PerEventFees(t *testing.T) {
	agg := settlementdomain.TransactionAggregate{
		SalesCount:      40,
		RefundCount:     3,
		DeclinedCount:   7,
		ChargebackCount: 2,
	}

	tests := []struct {
		key        feetypedomain.FeeKey
		minor      int64
		wantAmount float64
	}{
		{feetypedomain.FeeKeyTransaction, 35, 14.00},
		{feetypedomain.FeeKeyRefund, 100, 3.00},
		{feetypedomain.FeeKeyDeclined, 25, 1.75},
		{feetypedomain.FeeKeyChargeback, 2500, 50.00},
	}
	for _, tc := range tests {
		got := calculatorFor(tc.key).Calculate(agg, tc.minor)
		assert.InDelta(t, tc.wantAmount, got, 0.0001, "key %s", tc.key)
	}
}

func TestCalculatorFor_FlatFeesIgnoreVolume(t *testing.T) {
	agg := settlementdomain.TransactionAggregate{
		TotalSalesAmountEur: 123456.78,
		SalesCount:          999,
	}

	for _, key := range []feetypedomain.FeeKey{
		feetypedomain.FeeKeyPayout,
		feetypedomain.FeeKeyMonthly,
		feetypedomain.FeeKeyMastercardHighRisk,
		feetypedomain.FeeKeyVisaHighRisk,
		feetypedomain.FeeKeySetup,
	} {
		got := calculatorFor(key).Calculate(agg, 15000)
		assert.InDelta(t, 150.00, got, 0.0001, "key %s", key)
	}
}

func TestCalculatorFor_UnknownKeyCalculatesZero(t *testing.T) {
	agg := settlementdomain.TransactionAggregate{
		TotalSalesAmountEur: 5000,
		SalesCount:          10,
	}
	got := calculatorFor(feetypedomain.FeeKey("totally_unknown")).Calculate(agg, 999)
	assert.Zero(t, got)
}

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "5.25%", formatRate(true, 525))
	assert.Equal(t, "0.35", formatRate(false, 35))
	assert.Equal(t, "1500.00", formatRate(false, 150000))
}

func TestRoundMinor(t *testing.T) {
	assert.Equal(t, int64(0), roundMinor(0))
	assert.Equal(t, int64(12345), roundMinor(123.45))
	assert.Equal(t, int64(1100), roundMinor(10.999))
	// exact half rounds up: 0.125 is representable exactly in binary
	assert.Equal(t, int64(13), roundMinor(0.125))
}
