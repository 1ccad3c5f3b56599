package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/clearvia/payops/internal/feeapplication/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (*gorm.DB, *snowflake.Node, domain.Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.FeeApplication{}))
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return db, node, Provide()
}

func record(node *snowflake.Node, entity domain.EntityRef, feeTypeID int64, appliedAt time.Time, checksum string) *domain.FeeApplication {
	return &domain.FeeApplication{
		ID:           node.Generate(),
		MerchantID:   entity.MerchantID,
		ShopID:       entity.ShopID,
		FeeTypeID:    feeTypeID,
		BaseCurrency: "EUR",
		ExchangeRate: 1,
		AppliedAt:    appliedAt,
		Checksum:     checksum,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestInsert_DuplicateChecksumIsSkippedNotFailed(t *testing.T) {
	db, node, repo := setupRepo(t)
	entity := domain.MerchantRef(node.Generate())
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	checksum := domain.Checksum(entity, 7, "2026-03")

	applied, err := repo.Insert(context.Background(), db, record(node, entity, 7, at, checksum))
	require.NoError(t, err)
	assert.True(t, applied)

	// Same checksum from a concurrent or retried run: no error, no write.
	applied, err = repo.Insert(context.Background(), db, record(node, entity, 7, at.AddDate(0, 0, 3), checksum))
	require.NoError(t, err)
	assert.False(t, applied)

	var count int64
	require.NoError(t, db.Model(&domain.FeeApplication{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetLast_ReturnsNewestOrNil(t *testing.T) {
	db, node, repo := setupRepo(t)
	entity := domain.MerchantRef(node.Generate())

	got, err := repo.GetLast(context.Background(), db, entity, 7)
	require.NoError(t, err)
	assert.Nil(t, got)

	older := record(node, entity, 7, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), domain.Checksum(entity, 7, "2026-02"))
	newer := record(node, entity, 7, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), domain.Checksum(entity, 7, "2026-03"))
	for _, r := range []*domain.FeeApplication{older, newer} {
		applied, err := repo.Insert(context.Background(), db, r)
		require.NoError(t, err)
		require.True(t, applied)
	}

	got, err = repo.GetLast(context.Background(), db, entity, 7)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, newer.Checksum, got.Checksum)
}

func TestEntityScoping_MerchantRowsExcludeShopRows(t *testing.T) {
	db, node, repo := setupRepo(t)
	merchantID := node.Generate()
	shopID := node.Generate()
	merchantRef := domain.MerchantRef(merchantID)
	shopRef := domain.ShopRef(merchantID, shopID)
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	applied, err := repo.Insert(context.Background(), db,
		record(node, shopRef, 10, at, domain.Checksum(shopRef, 10, "once")))
	require.NoError(t, err)
	require.True(t, applied)

	// the shop's setup fee must not count as merchant-level history
	has, err := repo.HasAny(context.Background(), db, merchantRef)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = repo.HasAny(context.Background(), db, shopRef)
	require.NoError(t, err)
	assert.True(t, has)

	got, err := repo.GetLast(context.Background(), db, merchantRef, 10)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetInRange_HalfOpenInterval(t *testing.T) {
	db, node, repo := setupRepo(t)
	entity := domain.MerchantRef(node.Generate())

	dates := []time.Time{
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		applied, err := repo.Insert(context.Background(), db,
			record(node, entity, 7, d, domain.Checksum(entity, 7, d.Format("2006-01-02"))))
		require.NoError(t, err)
		require.True(t, applied, "row %d", i)
	}

	records, err := repo.GetInRange(context.Background(), db, entity, 7,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, dates[1].Unix(), records[0].AppliedAt.Unix())
	assert.Equal(t, dates[2].Unix(), records[1].AppliedAt.Unix())
}

func TestListByMerchant_NewestFirstWithLimit(t *testing.T) {
	db, node, repo := setupRepo(t)
	entity := domain.MerchantRef(node.Generate())

	for i := 0; i < 5; i++ {
		at := time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC)
		applied, err := repo.Insert(context.Background(), db,
			record(node, entity, 2, at, domain.Checksum(entity, 2, at.Format("2006-01-02"))))
		require.NoError(t, err)
		require.True(t, applied)
	}

	records, err := repo.ListByMerchant(context.Background(), db, entity.MerchantID, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC).Unix(), records[0].AppliedAt.Unix())
}
