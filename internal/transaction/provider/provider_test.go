package provider

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	exchangeratedomain "github.com/clearvia/payops/internal/exchangerate/domain"
	exchangeraterepo "github.com/clearvia/payops/internal/exchangerate/repository"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"github.com/clearvia/payops/internal/transaction/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupProvider(t *testing.T) (*gorm.DB, *snowflake.Node, domain.AggregateProvider) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Transaction{}, &exchangeratedomain.ExchangeRate{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	p := New(Params{DB: db, Log: zap.NewNop(), RateRepo: exchangeraterepo.Provide()})
	return db, node, p
}

func addTx(t *testing.T, db *gorm.DB, node *snowflake.Node, merchantID snowflake.ID, currency, status string, minor int64, at time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&domain.Transaction{
		ID:             node.Generate(),
		MerchantID:     merchantID,
		Currency:       currency,
		AmountMinor:    minor,
		AmountEurMinor: minor,
		Status:         status,
		ProcessedAt:    at,
	}).Error)
}

func TestMerchantAggregate_CountsByStatus(t *testing.T) {
	db, node, p := setupProvider(t)
	merchantID := node.Generate()
	period := settlementdomain.DateRange{
		Start: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	at := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)

	addTx(t, db, node, merchantID, "EUR", domain.StatusApproved, 100000, at)
	addTx(t, db, node, merchantID, "EUR", domain.StatusApproved, 50000, at)
	addTx(t, db, node, merchantID, "EUR", domain.StatusRefunded, 20000, at)
	addTx(t, db, node, merchantID, "EUR", domain.StatusDeclined, 7000, at)
	addTx(t, db, node, merchantID, "EUR", domain.StatusChargeback, 5000, at)
	// just outside the half-open window
	addTx(t, db, node, merchantID, "EUR", domain.StatusApproved, 900000, period.End)

	agg, err := p.MerchantAggregate(context.Background(), merchantID, period)
	require.NoError(t, err)

	assert.Equal(t, "EUR", agg.Currency)
	assert.Equal(t, 1.0, agg.ExchangeRate)
	assert.InDelta(t, 1500.00, agg.TotalSalesAmount, 0.0001)
	assert.InDelta(t, 1500.00, agg.TotalSalesAmountEur, 0.0001)
	assert.Equal(t, int64(2), agg.SalesCount)
	assert.Equal(t, int64(1), agg.RefundCount)
	assert.Equal(t, int64(1), agg.DeclinedCount)
	assert.Equal(t, int64(1), agg.ChargebackCount)
}

func TestMerchantAggregate_NonEurUsesEffectiveRate(t *testing.T) {
	db, node, p := setupProvider(t)
	merchantID := node.Generate()
	period := settlementdomain.DateRange{
		Start: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	addTx(t, db, node, merchantID, "USD", domain.StatusApproved, 100000,
		time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC))

	// no rate on file: the aggregate must fail loudly
	_, err := p.MerchantAggregate(context.Background(), merchantID, period)
	assert.ErrorIs(t, err, exchangeratedomain.ErrRateNotFound)

	rateRepo := exchangeraterepo.Provide()
	require.NoError(t, rateRepo.Insert(context.Background(), db, &exchangeratedomain.ExchangeRate{
		ID:       node.Generate(),
		Currency: "USD",
		Rate:     0.91,
		AsOf:     time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC),
	}))
	// newer rate after the period end must not win
	require.NoError(t, rateRepo.Insert(context.Background(), db, &exchangeratedomain.ExchangeRate{
		ID:       node.Generate(),
		Currency: "USD",
		Rate:     0.99,
		AsOf:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}))

	agg, err := p.MerchantAggregate(context.Background(), merchantID, period)
	require.NoError(t, err)
	assert.Equal(t, "USD", agg.Currency)
	assert.Equal(t, 0.91, agg.ExchangeRate)
}

func TestMerchantAggregate_EmptyWindow(t *testing.T) {
	_, node, p := setupProvider(t)

	agg, err := p.MerchantAggregate(context.Background(), node.Generate(), settlementdomain.DateRange{
		Start: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "EUR", agg.Currency, "empty windows default to EUR")
	assert.Equal(t, 1.0, agg.ExchangeRate)
	assert.Zero(t, agg.SalesCount)
	assert.Zero(t, agg.TotalSalesAmount)
}
