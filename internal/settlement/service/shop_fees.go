package service

import (
	"context"
	"fmt"

	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CalculateShopFees runs the shop-level settlement state machine:
//
//	new shop, setup fee eligible  -> apply the full standard bundle once,
//	                                 mark setup charged, suppress custom fees
//	anything else                 -> frequency-gated standard + custom fees
//
// Unlike the merchant path, orchestration errors are logged with context and
// returned: a broken shop settlement must fail visibly, never report a
// partial bill as zero fees. Per-item custom fee errors are still skipped.
func (s *Service) CalculateShopFees(
	ctx context.Context,
	merchantAccountID, externalShopID uuid.UUID,
	aggregate settlementdomain.TransactionAggregate,
	period settlementdomain.DateRange,
) (fees []settlementdomain.CalculatedFee, err error) {
	log := s.log.With(
		zap.String("merchant_account_id", merchantAccountID.String()),
		zap.String("external_shop_id", externalShopID.String()),
	)
	defer func() {
		if err != nil {
			log.Error("shop fee calculation failed", zap.Error(err))
		}
	}()

	if !period.End.After(period.Start) {
		return nil, settlementdomain.ErrInvalidPeriod
	}

	merchant, err := s.merchantRepo.FindByAccountID(ctx, s.db, merchantAccountID)
	if err != nil {
		return nil, fmt.Errorf("resolve merchant: %w", err)
	}
	if merchant == nil {
		return nil, settlementdomain.ErrMerchantNotFound
	}

	shop, err := s.shopRepo.FindByExternalID(ctx, s.db, externalShopID, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve shop: %w", err)
	}
	if shop == nil {
		return nil, settlementdomain.ErrShopNotFound
	}
	log = log.With(zap.String("shop_id", shop.ID.String()))

	settings, err := s.shopRepo.FindSettings(ctx, s.db, shop.ID)
	if err != nil {
		return nil, fmt.Errorf("load shop settings: %w", err)
	}
	if settings == nil || !settings.Active {
		log.Warn("shop settings missing or inactive, no fees calculated")
		return []settlementdomain.CalculatedFee{}, nil
	}

	entity := feeappdomain.ShopRef(merchant.ID, shop.ID)

	hasHistory, err := s.history.HasAny(ctx, s.db, entity)
	if err != nil {
		return nil, fmt.Errorf("check fee history: %w", err)
	}
	isNewShop := !settings.SetupFeeCharged && !hasHistory

	// Defense in depth: the settings flag can lag a successful application
	// if the settings write failed, so the history is checked as well.
	includeSetup := !settings.SetupFeeCharged
	if includeSetup {
		if setupDef, ok := s.registry.Lookup(feetypedomain.FeeKeySetup); ok {
			last, err := s.history.GetLast(ctx, s.db, entity, setupDef.FeeTypeID)
			if err != nil {
				return nil, fmt.Errorf("check setup fee history: %w", err)
			}
			if last != nil {
				includeSetup = false
			}
		}
	}

	standard := s.standardFees(settings, aggregate, includeSetup, &shop.ID)

	setupEligible := false
	for _, fee := range standard {
		if fee.FeeType != string(feetypedomain.FeeKeySetup) {
			continue
		}
		setupEligible, err = s.policy.shouldApply(ctx, fee.Frequency, entity, fee.FeeTypeID, period)
		if err != nil {
			return nil, fmt.Errorf("setup fee eligibility: %w", err)
		}
		break
	}

	bootstrap := setupEligible && isNewShop
	runID := s.genID.Generate().String()
	fees = make([]settlementdomain.CalculatedFee, 0, len(standard))

	for _, fee := range standard {
		var applied bool
		if bootstrap {
			// First bill for a brand-new shop: the whole standard bundle is
			// charged regardless of per-fee frequency eligibility.
			applied, err = s.recordApplication(ctx, entity, fee, aggregate, period, runID)
		} else {
			applied, err = s.applyFee(ctx, entity, fee, aggregate, period, runID)
		}
		if err != nil {
			return nil, fmt.Errorf("apply fee %s: %w", fee.FeeType, err)
		}
		if !applied {
			continue
		}
		if fee.FeeType == string(feetypedomain.FeeKeySetup) {
			if err := s.shopRepo.UpdateSetupFeeCharged(ctx, s.db, shop.ID, true); err != nil {
				return nil, fmt.Errorf("persist setup fee flag: %w", err)
			}
		}
		fees = append(fees, fee)
	}

	// During the bootstrap run custom fees are suppressed so the first bill
	// is exactly the standard bundle.
	if bootstrap {
		return fees, nil
	}

	customs, err := s.customFeeRepo.ListActiveForShop(ctx, s.db, shop.ID, period.Start)
	if err != nil {
		return nil, fmt.Errorf("list custom fees: %w", err)
	}
	for _, custom := range customs {
		if custom.AmountMinor <= 0 {
			continue
		}
		fee := customFee(custom, aggregate, &shop.ID)
		applied, itemErr := s.applyFee(ctx, entity, fee, aggregate, period, runID)
		if itemErr != nil {
			log.Warn("custom fee skipped",
				zap.Int64("fee_type_id", fee.FeeTypeID),
				zap.String("fee_type", fee.FeeType),
				zap.Error(itemErr),
			)
			continue
		}
		if applied {
			fees = append(fees, fee)
		}
	}

	return fees, nil
}
