package service

import (
	"context"
	"time"

	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"gorm.io/gorm"
)

// frequencyPolicy decides whether a fee should be applied for a period,
// consulting prior applications in the audit log. Transaction, daily and
// weekly fees always pass: the caller's date range is their de-duplication
// unit. Monthly and yearly fees only trigger on runs whose period starts in
// the opening week of the month or year, and only once per such period.
// Unknown frequencies fail closed.
type frequencyPolicy struct {
	db      *gorm.DB
	history feeappdomain.Repository
}

func (p frequencyPolicy) shouldApply(
	ctx context.Context,
	freq feetypedomain.FrequencyType,
	entity feeappdomain.EntityRef,
	feeTypeID int64,
	period settlementdomain.DateRange,
) (bool, error) {
	switch freq {
	case feetypedomain.FrequencyTransaction, feetypedomain.FrequencyDaily, feetypedomain.FrequencyWeekly:
		return true, nil
	case feetypedomain.FrequencyOneTime:
		last, err := p.history.GetLast(ctx, p.db, entity, feeTypeID)
		if err != nil {
			return false, err
		}
		return last == nil, nil
	case feetypedomain.FrequencyMonthly:
		start := period.Start.UTC()
		if start.Day() > 7 {
			return false, nil
		}
		monthStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
		return p.noneInRange(ctx, entity, feeTypeID, monthStart, monthStart.AddDate(0, 1, 0))
	case feetypedomain.FrequencyYearly:
		start := period.Start.UTC()
		if start.YearDay() > 7 {
			return false, nil
		}
		yearStart := time.Date(start.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return p.noneInRange(ctx, entity, feeTypeID, yearStart, yearStart.AddDate(1, 0, 0))
	default:
		return false, nil
	}
}

func (p frequencyPolicy) noneInRange(
	ctx context.Context,
	entity feeappdomain.EntityRef,
	feeTypeID int64,
	start, end time.Time,
) (bool, error) {
	records, err := p.history.GetInRange(ctx, p.db, entity, feeTypeID, start, end)
	if err != nil {
		return false, err
	}
	return len(records) == 0, nil
}
