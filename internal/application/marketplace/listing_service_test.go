package marketplace

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
)

type fakeCheckout struct {
	sessions int
}

func (f *fakeCheckout) CreateListingCheckout(ctx context.Context, input CreateCheckoutInput) (*CheckoutSession, error) {
	f.sessions++
	return &CheckoutSession{
		SessionID: "cs_test_" + input.ListingID.String(),
		URL:       "https://checkout.test/pay/" + input.ListingID.String(),
	}, nil
}

func listingConfig() ListingConfig {
	return ListingConfig{
		Price:      decimal.RequireFromString("49.00"),
		Currency:   "usd",
		Duration:   7 * 24 * time.Hour,
		SuccessURL: "https://bidboard.test/listings/success",
		CancelURL:  "https://bidboard.test/listings/cancel",
	}
}

func newListingFixture(t *testing.T) (*ListingService, *memListingRepo, *memRfpRepo, RfpDTO, *identity.User) {
	t.Helper()
	org := newOrgUser(t)
	rfpRepo := newMemRfpRepo()
	listingRepo := newMemListingRepo()
	rfps := NewRfpService(rfpRepo, newMemBidRepo(), newMemDocRepo(), newMemUserRepo(org), nil, nil, nil)
	svc := NewListingService(listingRepo, rfpRepo, &fakeCheckout{}, nil, listingConfig(), nil)

	ctx := context.Background()
	dto, err := rfps.Create(ctx, org.ID, validRfpInput())
	require.NoError(t, err)
	published, err := rfps.Publish(ctx, org.ID, dto.ID)
	require.NoError(t, err)
	return svc, listingRepo, rfpRepo, *published, org
}

func TestListingServiceStartCheckout(t *testing.T) {
	t.Run("poster starts a checkout for an open rfp", func(t *testing.T) {
		svc, listingRepo, _, rfp, org := newListingFixture(t)

		checkout, err := svc.StartCheckout(context.Background(), org.ID, rfp.ID)

		require.NoError(t, err)
		assert.Contains(t, checkout.CheckoutURL, "https://checkout.test/pay/")
		assert.Equal(t, "usd", checkout.Currency)
		assert.True(t, checkout.Amount.Equal(decimal.RequireFromString("49.00")))

		listing, err := listingRepo.FindByCheckoutSession(context.Background(), checkout.SessionID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.FeaturedListingStatusPending, listing.Status)
	})

	t.Run("someone else cannot feature the rfp", func(t *testing.T) {
		svc, _, _, rfp, _ := newListingFixture(t)

		_, err := svc.StartCheckout(context.Background(), newContractorUser(t).ID, rfp.ID)

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestListingServiceCompleteCheckout(t *testing.T) {
	svc, listingRepo, rfpRepo, rfp, org := newListingFixture(t)
	ctx := context.Background()

	checkout, err := svc.StartCheckout(ctx, org.ID, rfp.ID)
	require.NoError(t, err)

	t.Run("payment features the rfp", func(t *testing.T) {
		require.NoError(t, svc.CompleteCheckout(ctx, checkout.SessionID))

		listing, err := listingRepo.FindByCheckoutSession(ctx, checkout.SessionID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.FeaturedListingStatusPaid, listing.Status)

		stored, err := rfpRepo.FindByID(ctx, rfp.ID)
		require.NoError(t, err)
		assert.True(t, stored.Featured)
		require.NotNil(t, stored.FeaturedUntil)
		assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *stored.FeaturedUntil, time.Minute)
	})

	t.Run("webhook retries are harmless", func(t *testing.T) {
		assert.NoError(t, svc.CompleteCheckout(ctx, checkout.SessionID))
	})

	t.Run("unknown session is an error", func(t *testing.T) {
		assert.ErrorIs(t, svc.CompleteCheckout(ctx, "cs_test_unknown"), shared.ErrNotFound)
	})
}

func TestListingServiceExpireCheckout(t *testing.T) {
	svc, listingRepo, _, rfp, org := newListingFixture(t)
	ctx := context.Background()

	checkout, err := svc.StartCheckout(ctx, org.ID, rfp.ID)
	require.NoError(t, err)

	t.Run("abandoned session expires the purchase", func(t *testing.T) {
		require.NoError(t, svc.ExpireCheckout(ctx, checkout.SessionID))

		listing, err := listingRepo.FindByCheckoutSession(ctx, checkout.SessionID)
		require.NoError(t, err)
		assert.Equal(t, marketplace.FeaturedListingStatusExpired, listing.Status)
	})

	t.Run("unknown session is ignored", func(t *testing.T) {
		assert.NoError(t, svc.ExpireCheckout(ctx, "cs_test_unknown"))
	})
}
