// Package provider computes transaction aggregates for settlement windows.
package provider

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	exchangeratedomain "github.com/clearvia/payops/internal/exchangerate/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"github.com/clearvia/payops/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	RateRepo exchangeratedomain.Repository
}

type Provider struct {
	db       *gorm.DB
	log      *zap.Logger
	rateRepo exchangeratedomain.Repository
}

func New(p Params) domain.AggregateProvider {
	return &Provider{
		db:       p.DB,
		log:      p.Log.Named("transaction.provider"),
		rateRepo: p.RateRepo,
	}
}

type aggregateRow struct {
	Currency        string
	SalesMinor      int64
	SalesEurMinor   int64
	SalesCount      int64
	RefundCount     int64
	DeclinedCount   int64
	ChargebackCount int64
}

func (p *Provider) MerchantAggregate(ctx context.Context, merchantID snowflake.ID, period settlementdomain.DateRange) (settlementdomain.TransactionAggregate, error) {
	return p.aggregate(ctx, `merchant_id = ?`, []any{merchantID}, period)
}

func (p *Provider) ShopAggregate(ctx context.Context, shopID snowflake.ID, period settlementdomain.DateRange) (settlementdomain.TransactionAggregate, error) {
	return p.aggregate(ctx, `shop_id = ?`, []any{shopID}, period)
}

func (p *Provider) aggregate(ctx context.Context, scope string, args []any, period settlementdomain.DateRange) (settlementdomain.TransactionAggregate, error) {
	var row aggregateRow
	query := fmt.Sprintf(
		`SELECT
			COALESCE(MAX(CASE WHEN status = 'approved' THEN currency END), 'EUR') AS currency,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN amount_minor ELSE 0 END), 0) AS sales_minor,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN amount_eur_minor ELSE 0 END), 0) AS sales_eur_minor,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS sales_count,
			COALESCE(SUM(CASE WHEN status = 'refunded' THEN 1 ELSE 0 END), 0) AS refund_count,
			COALESCE(SUM(CASE WHEN status = 'declined' THEN 1 ELSE 0 END), 0) AS declined_count,
			COALESCE(SUM(CASE WHEN status = 'chargeback' THEN 1 ELSE 0 END), 0) AS chargeback_count
		 FROM transactions
		 WHERE %s AND processed_at >= ? AND processed_at < ?`,
		scope,
	)
	args = append(args, period.Start, period.End)
	if err := p.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return settlementdomain.TransactionAggregate{}, err
	}

	rate := 1.0
	if row.Currency != "EUR" {
		effective, err := p.rateRepo.FindEffectiveAt(ctx, p.db, row.Currency, period.End)
		if err != nil {
			return settlementdomain.TransactionAggregate{}, err
		}
		if effective == nil {
			return settlementdomain.TransactionAggregate{}, exchangeratedomain.ErrRateNotFound
		}
		rate = effective.Rate
	}

	return settlementdomain.TransactionAggregate{
		Currency:            row.Currency,
		ExchangeRate:        rate,
		TotalSalesAmount:    float64(row.SalesMinor) / 100,
		TotalSalesAmountEur: float64(row.SalesEurMinor) / 100,
		SalesCount:          row.SalesCount,
		RefundCount:         row.RefundCount,
		DeclinedCount:       row.DeclinedCount,
		ChargebackCount:     row.ChargebackCount,
	}, nil
}
