package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	customfeedomain "github.com/clearvia/payops/internal/customfee/domain"
	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	"github.com/clearvia/payops/internal/feetype"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	merchantdomain "github.com/clearvia/payops/internal/merchant/domain"
	obsmetrics "github.com/clearvia/payops/internal/observability/metrics"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	shopdomain "github.com/clearvia/payops/internal/shop/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Registry      *feetype.Registry
	MerchantRepo  merchantdomain.Repository
	ShopRepo      shopdomain.Repository
	CustomFeeRepo customfeedomain.Repository
	History       feeappdomain.Repository
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	registry      *feetype.Registry
	merchantRepo  merchantdomain.Repository
	shopRepo      shopdomain.Repository
	customFeeRepo customfeedomain.Repository
	history       feeappdomain.Repository
	policy        frequencyPolicy
}

func New(p Params) settlementdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("settlement.service"),
		genID:         p.GenID,
		registry:      p.Registry,
		merchantRepo:  p.MerchantRepo,
		shopRepo:      p.ShopRepo,
		customFeeRepo: p.CustomFeeRepo,
		history:       p.History,
		policy:        frequencyPolicy{db: p.DB, history: p.History},
	}
}

// CalculateMerchantFees composes standard and custom merchant fees for the
// period. Missing settings degrade to an empty list; individual fee errors
// are logged and skipped so one malformed entry never fails the batch.
func (s *Service) CalculateMerchantFees(
	ctx context.Context,
	merchantID snowflake.ID,
	aggregate settlementdomain.TransactionAggregate,
	period settlementdomain.DateRange,
) ([]settlementdomain.CalculatedFee, error) {
	if !period.End.After(period.Start) {
		return nil, settlementdomain.ErrInvalidPeriod
	}

	log := s.log.With(zap.String("merchant_id", merchantID.String()))

	settings, err := s.merchantRepo.FindSettings(ctx, s.db, merchantID)
	if err != nil {
		return nil, err
	}
	if settings == nil || !settings.Active {
		log.Warn("merchant settings missing or inactive, no fees calculated")
		return []settlementdomain.CalculatedFee{}, nil
	}

	entity := feeappdomain.MerchantRef(merchantID)
	runID := s.genID.Generate().String()
	fees := make([]settlementdomain.CalculatedFee, 0)

	for _, fee := range s.standardFees(settings, aggregate, !settings.SetupFeeCharged, nil) {
		applied, err := s.applyFee(ctx, entity, fee, aggregate, period, runID)
		if err != nil {
			log.Warn("standard fee skipped",
				zap.Int64("fee_type_id", fee.FeeTypeID),
				zap.String("fee_type", fee.FeeType),
				zap.Error(err),
			)
			continue
		}
		if !applied {
			continue
		}
		if fee.FeeType == string(feetypedomain.FeeKeySetup) {
			if err := s.merchantRepo.UpdateSetupFeeCharged(ctx, s.db, merchantID, true); err != nil {
				log.Warn("failed to persist setup fee flag", zap.Error(err))
			}
		}
		fees = append(fees, fee)
	}

	customs, err := s.customFeeRepo.ListActiveForMerchant(ctx, s.db, merchantID, period.Start)
	if err != nil {
		log.Warn("custom fee lookup failed, standard fees only", zap.Error(err))
		return fees, nil
	}
	for _, custom := range customs {
		if custom.AmountMinor <= 0 {
			continue
		}
		fee := customFee(custom, aggregate, nil)
		applied, err := s.applyFee(ctx, entity, fee, aggregate, period, runID)
		if err != nil {
			log.Warn("custom fee skipped",
				zap.Int64("fee_type_id", fee.FeeTypeID),
				zap.String("fee_type", fee.FeeType),
				zap.Error(err),
			)
			continue
		}
		if applied {
			fees = append(fees, fee)
		}
	}

	return fees, nil
}

// applyFee runs the frequency policy and, when the fee passes, appends the
// audit record. The checksum unique index makes the insert the single
// arbiter under concurrency: a skipped insert means another run already
// charged this period and the fee is dropped from the output.
func (s *Service) applyFee(
	ctx context.Context,
	entity feeappdomain.EntityRef,
	fee settlementdomain.CalculatedFee,
	aggregate settlementdomain.TransactionAggregate,
	period settlementdomain.DateRange,
	runID string,
) (bool, error) {
	eligible, err := s.policy.shouldApply(ctx, fee.Frequency, entity, fee.FeeTypeID, period)
	if err != nil {
		return false, err
	}
	if !eligible {
		return false, nil
	}
	return s.recordApplication(ctx, entity, fee, aggregate, period, runID)
}

// recordApplication appends the audit record without consulting the
// frequency policy. Used directly by the shop bootstrap branch.
func (s *Service) recordApplication(
	ctx context.Context,
	entity feeappdomain.EntityRef,
	fee settlementdomain.CalculatedFee,
	aggregate settlementdomain.TransactionAggregate,
	period settlementdomain.DateRange,
	runID string,
) (bool, error) {
	bucket := feeappdomain.BucketFor(fee.Frequency, period.Start, runID)
	record := &feeappdomain.FeeApplication{
		ID:                s.genID.Generate(),
		MerchantID:        entity.MerchantID,
		ShopID:            entity.ShopID,
		FeeTypeID:         fee.FeeTypeID,
		BaseAmountMinor:   roundMinor(aggregate.TotalSalesAmount),
		BaseCurrency:      aggregate.Currency,
		FeeAmountEurMinor: roundMinor(fee.FeeAmount),
		ExchangeRate:      aggregate.ExchangeRate,
		AppliedAt:         period.Start,
		Checksum:          feeappdomain.Checksum(entity, fee.FeeTypeID, bucket),
		CreatedAt:         time.Now().UTC(),
	}
	applied, err := s.history.Insert(ctx, s.db, record)
	if err != nil {
		return false, err
	}
	if applied {
		obsmetrics.Settlement().AddFeesApplied(fee.FeeType, 1)
	}
	return applied, nil
}

// roundMinor converts a major-unit amount to minor units, rounding half up.
func roundMinor(major float64) int64 {
	return int64(math.Floor(major*100 + 0.5))
}
