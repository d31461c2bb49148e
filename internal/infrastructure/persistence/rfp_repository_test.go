package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/bidboard/backend/internal/infrastructure/persistence/models"
)

func setupRfpTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RfpModel{}, &models.BidRequestModel{}))
	return db
}

func savedRfp(t *testing.T, repo *GormRfpRepository, deadline time.Time, mutate func(*marketplace.Rfp)) *marketplace.Rfp {
	t.Helper()
	rfp := marketplace.NewRfp(uuid.New(), uuid.New(), "Parking lot resurfacing", "Mill and repave", "paving", "Akron", "OH", deadline)
	require.NoError(t, rfp.Publish())
	rfp.Events()
	if mutate != nil {
		mutate(rfp)
	}
	require.NoError(t, repo.Save(context.Background(), rfp))
	return rfp
}

func TestGormRfpRepository_SaveAndFind(t *testing.T) {
	repo := NewGormRfpRepository(setupRfpTestDB(t))
	ctx := context.Background()

	rfp := savedRfp(t, repo, time.Now().Add(48*time.Hour), nil)

	found, err := repo.FindByID(ctx, rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, rfp.ID, found.ID)
	assert.Equal(t, marketplace.RfpStatusOpen, found.Status)
	assert.Equal(t, "paving", found.TradeCategory)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormRfpRepository_Search(t *testing.T) {
	repo := NewGormRfpRepository(setupRfpTestDB(t))
	ctx := context.Background()

	savedRfp(t, repo, time.Now().Add(48*time.Hour), nil)
	savedRfp(t, repo, time.Now().Add(72*time.Hour), func(r *marketplace.Rfp) {
		r.TradeCategory = "roofing"
	})
	featured := savedRfp(t, repo, time.Now().Add(96*time.Hour), func(r *marketplace.Rfp) {
		require.NoError(t, r.Feature(time.Now().Add(7*24*time.Hour)))
	})

	t.Run("filters by trade category", func(t *testing.T) {
		rfps, total, err := repo.Search(ctx, marketplace.RfpFilter{TradeCategory: "roofing"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, rfps, 1)
		assert.Equal(t, "roofing", rfps[0].TradeCategory)
	})

	t.Run("featured listings sort first", func(t *testing.T) {
		rfps, total, err := repo.Search(ctx, marketplace.RfpFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		require.NotEmpty(t, rfps)
		assert.Equal(t, featured.ID, rfps[0].ID)
	})

	t.Run("paginates", func(t *testing.T) {
		rfps, total, err := repo.Search(ctx, marketplace.RfpFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, rfps, 1)
	})

	t.Run("featured only", func(t *testing.T) {
		rfps, _, err := repo.Search(ctx, marketplace.RfpFilter{FeaturedOnly: true})
		require.NoError(t, err)
		require.Len(t, rfps, 1)
		assert.Equal(t, featured.ID, rfps[0].ID)
	})
}

func TestGormRfpRepository_FindOpenWithDeadlineBefore(t *testing.T) {
	repo := NewGormRfpRepository(setupRfpTestDB(t))
	ctx := context.Background()

	soon := savedRfp(t, repo, time.Now().Add(20*time.Hour), nil)
	savedRfp(t, repo, time.Now().Add(10*24*time.Hour), nil) // outside the window
	closed := savedRfp(t, repo, time.Now().Add(30*time.Hour), nil)
	require.NoError(t, closed.Close())
	require.NoError(t, repo.Save(ctx, closed))

	rfps, err := repo.FindOpenWithDeadlineBefore(ctx, time.Now().Add(7*24*time.Hour))

	require.NoError(t, err)
	require.Len(t, rfps, 1)
	assert.Equal(t, soon.ID, rfps[0].ID)
}

func TestGormRfpRepository_Delete(t *testing.T) {
	repo := NewGormRfpRepository(setupRfpTestDB(t))
	ctx := context.Background()

	rfp := savedRfp(t, repo, time.Now().Add(48*time.Hour), nil)

	require.NoError(t, repo.Delete(ctx, rfp.ID))
	assert.ErrorIs(t, repo.Delete(ctx, rfp.ID), shared.ErrNotFound)
}
