// Package scheduler drives periodic settlement runs over all active
// merchants and their shops.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/clock"
	"github.com/clearvia/payops/internal/config"
	merchantdomain "github.com/clearvia/payops/internal/merchant/domain"
	obsmetrics "github.com/clearvia/payops/internal/observability/metrics"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	shopdomain "github.com/clearvia/payops/internal/shop/domain"
	transactiondomain "github.com/clearvia/payops/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	ConfigHolder  *config.SettlementConfigHolder
	SettlementSvc settlementdomain.Service
	MerchantRepo  merchantdomain.Repository
	ShopRepo      shopdomain.Repository
	Aggregates    transactiondomain.AggregateProvider
}

type Scheduler struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	configHolder  *config.SettlementConfigHolder
	settlementSvc settlementdomain.Service
	merchantRepo  merchantdomain.Repository
	shopRepo      shopdomain.Repository
	aggregates    transactiondomain.AggregateProvider
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:            p.DB,
		log:           p.Log.Named("scheduler").With(zap.String("component", "settlement_runner")),
		genID:         p.GenID,
		clock:         p.Clock,
		configHolder:  p.ConfigHolder,
		settlementSvc: p.SettlementSvc,
		merchantRepo:  p.MerchantRepo,
		shopRepo:      p.ShopRepo,
		aggregates:    p.Aggregates,
	}
}

// RunOnce settles every active merchant and its shops for the configured
// trailing period. Per-merchant failures are logged and counted; the run
// continues so one broken merchant never stalls the whole batch.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	cfg := s.configHolder.Get()
	start := s.clock.Now()
	end := start.Truncate(24 * time.Hour)
	period := settlementdomain.DateRange{
		Start: end.AddDate(0, 0, -cfg.PeriodDays),
		End:   end,
	}

	metrics := obsmetrics.Settlement()
	metrics.IncRun()
	defer func() {
		metrics.ObserveRunDuration(time.Since(start))
	}()

	merchants, err := s.claimMerchants(ctx, cfg.BatchSize)
	if err != nil {
		metrics.IncRunError("claim")
		return fmt.Errorf("claim merchants: %w", err)
	}

	log := s.log.With(
		zap.Time("period_start", period.Start),
		zap.Time("period_end", period.End),
		zap.Int("merchants", len(merchants)),
	)
	log.Info("settlement run started")

	for _, m := range merchants {
		if err := s.settleMerchant(ctx, m, period); err != nil {
			metrics.IncRunError("merchant")
			log.Error("merchant settlement failed",
				zap.String("merchant_id", m.ID.String()),
				zap.Error(err),
			)
		}
	}

	log.Info("settlement run finished")
	return nil
}

func (s *Scheduler) settleMerchant(ctx context.Context, m merchantdomain.Merchant, period settlementdomain.DateRange) error {
	aggregate, err := s.aggregates.MerchantAggregate(ctx, m.ID, period)
	if err != nil {
		return fmt.Errorf("merchant aggregate: %w", err)
	}

	fees, err := s.settlementSvc.CalculateMerchantFees(ctx, m.ID, aggregate, period)
	if err != nil {
		return fmt.Errorf("merchant fees: %w", err)
	}
	s.log.Debug("merchant fees calculated",
		zap.String("merchant_id", m.ID.String()),
		zap.Int("fees", len(fees)),
	)

	shops, err := s.shopRepo.ListActiveByMerchant(ctx, s.db, m.ID)
	if err != nil {
		return fmt.Errorf("list shops: %w", err)
	}

	for _, sh := range shops {
		shopAggregate, err := s.aggregates.ShopAggregate(ctx, sh.ID, period)
		if err != nil {
			return fmt.Errorf("shop %s aggregate: %w", sh.ID, err)
		}
		if _, err := s.settlementSvc.CalculateShopFees(ctx, m.AccountID, sh.ExternalID, shopAggregate, period); err != nil {
			return fmt.Errorf("shop %s fees: %w", sh.ID, err)
		}
	}

	return nil
}

// claimMerchants fetches the batch inside a transaction, taking row locks
// where the dialect supports them so concurrent runner replicas do not
// settle the same merchants.
func (s *Scheduler) claimMerchants(ctx context.Context, limit int) ([]merchantdomain.Merchant, error) {
	var merchants []merchantdomain.Merchant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := `SELECT id, account_id, name, active, created_at, updated_at
			 FROM merchants
			 WHERE active = ?
			 ORDER BY id` + lockClause(tx) + `
			 LIMIT ?`
		return tx.Raw(query, true, limit).Scan(&merchants).Error
	})
	if err != nil {
		return nil, err
	}
	return merchants, nil
}

func lockClause(tx *gorm.DB) string {
	switch tx.Dialector.Name() {
	case "postgres", "mysql":
		return " FOR UPDATE SKIP LOCKED"
	default:
		return ""
	}
}
