package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	feeappdomain "github.com/clearvia/payops/internal/feeapplication/domain"
	feeapprepo "github.com/clearvia/payops/internal/feeapplication/repository"
	feetypedomain "github.com/clearvia/payops/internal/feetype/domain"
	settlementdomain "github.com/clearvia/payops/internal/settlement/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// newTestDB opens a private in-memory database. The shared-cache DSN keeps
// every pooled connection pointed at the same database.
func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:feetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	if len(models) == 0 {
		models = []any{&feeappdomain.FeeApplication{}}
	}
	require.NoError(t, db.AutoMigrate(models...))
	return db
}

func newTestNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func insertApplication(
	t *testing.T,
	db *gorm.DB,
	node *snowflake.Node,
	history feeappdomain.Repository,
	entity feeappdomain.EntityRef,
	feeTypeID int64,
	freq feetypedomain.FrequencyType,
	appliedAt time.Time,
) {
	t.Helper()
	bucket := feeappdomain.BucketFor(freq, appliedAt, node.Generate().String())
	applied, err := history.Insert(context.Background(), db, &feeappdomain.FeeApplication{
		ID:           node.Generate(),
		MerchantID:   entity.MerchantID,
		ShopID:       entity.ShopID,
		FeeTypeID:    feeTypeID,
		BaseCurrency: "EUR",
		ExchangeRate: 1,
		AppliedAt:    appliedAt,
		Checksum:     feeappdomain.Checksum(entity, feeTypeID, bucket),
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, applied)
}

func periodStarting(start time.Time) settlementdomain.DateRange {
	return settlementdomain.DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

func TestShouldApply_PerRunFrequenciesAlwaysPass(t *testing.T) {
	db := newTestDB(t)
	policy := frequencyPolicy{db: db, history: feeapprepo.Provide()}
	entity := feeappdomain.MerchantRef(newTestNode(t).Generate())
	period := periodStarting(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))

	for _, freq := range []feetypedomain.FrequencyType{
		feetypedomain.FrequencyTransaction,
		feetypedomain.FrequencyDaily,
		feetypedomain.FrequencyWeekly,
	} {
		ok, err := policy.shouldApply(context.Background(), freq, entity, 2, period)
		require.NoError(t, err)
		assert.True(t, ok, "frequency %s", freq)
	}
}

func TestShouldApply_OneTimeOnlyWithoutPriorRecord(t *testing.T) {
	db := newTestDB(t)
	node := newTestNode(t)
	history := feeapprepo.Provide()
	policy := frequencyPolicy{db: db, history: history}
	entity := feeappdomain.MerchantRef(node.Generate())
	period := periodStarting(time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC))

	ok, err := policy.shouldApply(context.Background(), feetypedomain.FrequencyOneTime, entity, 10, period)
	require.NoError(t, err)
	assert.True(t, ok)

	insertApplication(t, db, node, history, entity, 10, feetypedomain.FrequencyOneTime, period.Start)

	ok, err = policy.shouldApply(context.Background(), feetypedomain.FrequencyOneTime, entity, 10, period)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldApply_MonthlyRequiresOpeningWeek(t *testing.T) {
	db := newTestDB(t)
	policy := frequencyPolicy{db: db, history: feeapprepo.Provide()}
	entity := feeappdomain.MerchantRef(newTestNode(t).Generate())

	ok, err := policy.shouldApply(context.Background(), feetypedomain.FrequencyMonthly, entity, 7,
		periodStarting(time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, ok, "period starting past day 7 must not trigger")

	ok, err = policy.shouldApply(context.Background(), feetypedomain.FrequencyMonthly, entity, 7,
		periodStarting(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShouldApply_MonthlyOncePerCalendarMonth(t *testing.T) {
	db := newTestDB(t)
	node := newTestNode(t)
	history := feeapprepo.Provide()
	policy := frequencyPolicy{db: db, history: history}
	entity := feeappdomain.MerchantRef(node.Generate())

	march := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	insertApplication(t, db, node, history, entity, 7, feetypedomain.FrequencyMonthly, march)

	ok, err := policy.shouldApply(context.Background(), feetypedomain.FrequencyMonthly, entity, 7,
		periodStarting(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, ok, "already applied this month")

	ok, err = policy.shouldApply(context.Background(), feetypedomain.FrequencyMonthly, entity, 7,
		periodStarting(time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, ok, "next month is a fresh window")
}

func TestShouldApply_YearlyOncePerYearInOpeningWeek(t *testing.T) {
	db := newTestDB(t)
	node := newTestNode(t)
	history := feeapprepo.Provide()
	policy := frequencyPolicy{db: db, history: history}
	entity := feeappdomain.MerchantRef(node.Generate())

	ok, err := policy.shouldApply(context.Background(), feetypedomain.FrequencyYearly, entity, 11,
		periodStarting(time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, ok, "past the opening week of the year")

	ok, err = policy.shouldApply(context.Background(), feetypedomain.FrequencyYearly, entity, 11,
		periodStarting(time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.True(t, ok)

	insertApplication(t, db, node, history, entity, 11, feetypedomain.FrequencyYearly,
		time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC))

	ok, err = policy.shouldApply(context.Background(), feetypedomain.FrequencyYearly, entity, 11,
		periodStarting(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldApply_UnknownFrequencyFailsClosed(t *testing.T) {
	db := newTestDB(t)
	policy := frequencyPolicy{db: db, history: feeapprepo.Provide()}
	entity := feeappdomain.MerchantRef(newTestNode(t).Generate())

	ok, err := policy.shouldApply(context.Background(), feetypedomain.FrequencyType("fortnightly"), entity, 2,
		periodStarting(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.False(t, ok)
}
