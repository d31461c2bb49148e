package marketplace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
)

func newBidServiceFixture(t *testing.T) (*BidService, *RfpService, *captureNotifier, *identity.User, *identity.User) {
	t.Helper()
	org := newOrgUser(t)
	contractor := newContractorUser(t)
	rfpRepo := newMemRfpRepo()
	bidRepo := newMemBidRepo()
	userRepo := newMemUserRepo(org, contractor)
	notifier := &captureNotifier{}
	bids := NewBidService(bidRepo, rfpRepo, userRepo, nil, notifier, nil)
	rfps := NewRfpService(rfpRepo, bidRepo, newMemDocRepo(), userRepo, nil, nil, nil)
	return bids, rfps, notifier, org, contractor
}

func publishedRfp(t *testing.T, rfps *RfpService, org *identity.User) RfpDTO {
	t.Helper()
	ctx := context.Background()
	dto, err := rfps.Create(ctx, org.ID, validRfpInput())
	require.NoError(t, err)
	published, err := rfps.Publish(ctx, org.ID, dto.ID)
	require.NoError(t, err)
	return *published
}

func TestBidServiceSubmit(t *testing.T) {
	t.Run("contractor submits and the poster is notified", func(t *testing.T) {
		bids, rfps, notifier, org, contractor := newBidServiceFixture(t)
		rfp := publishedRfp(t, rfps, org)

		dto, err := bids.Submit(context.Background(), contractor.ID, rfp.ID, "requesting the plan set")

		require.NoError(t, err)
		assert.Equal(t, string(marketplace.BidRequestStatusPending), dto.Status)
		require.Len(t, notifier.sent, 1)
		assert.Equal(t, org.ID, notifier.sent[0].UserID)
		assert.Equal(t, notification.TypeBidReceived, notifier.sent[0].Type)
		assert.Contains(t, notifier.sent[0].Title, "Ridgeline Builders")
	})

	t.Run("one live request per contractor per rfp", func(t *testing.T) {
		bids, rfps, _, org, contractor := newBidServiceFixture(t)
		rfp := publishedRfp(t, rfps, org)
		ctx := context.Background()

		first, err := bids.Submit(ctx, contractor.ID, rfp.ID, "first")
		require.NoError(t, err)

		_, err = bids.Submit(ctx, contractor.ID, rfp.ID, "second")
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		// withdrawing frees the slot
		require.NoError(t, bids.Withdraw(ctx, contractor.ID, first.ID))
		_, err = bids.Submit(ctx, contractor.ID, rfp.ID, "after withdrawal")
		assert.NoError(t, err)
	})

	t.Run("organizations cannot bid", func(t *testing.T) {
		bids, rfps, _, org, _ := newBidServiceFixture(t)
		rfp := publishedRfp(t, rfps, org)

		_, err := bids.Submit(context.Background(), org.ID, rfp.ID, "hello")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("drafts are not open for bidding", func(t *testing.T) {
		bids, rfps, _, org, contractor := newBidServiceFixture(t)
		ctx := context.Background()
		draft, err := rfps.Create(ctx, org.ID, validRfpInput())
		require.NoError(t, err)

		_, err = bids.Submit(ctx, contractor.ID, draft.ID, "hello")
		assert.ErrorIs(t, err, shared.ErrNotOpen)
	})
}

func TestBidServiceRespond(t *testing.T) {
	bids, rfps, notifier, org, contractor := newBidServiceFixture(t)
	rfp := publishedRfp(t, rfps, org)
	ctx := context.Background()

	submitted, err := bids.Submit(ctx, contractor.ID, rfp.ID, "what is the roof pitch?")
	require.NoError(t, err)
	notifier.sent = nil

	t.Run("only the poster can respond", func(t *testing.T) {
		_, err := bids.Respond(ctx, contractor.ID, submitted.ID, "4:12")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("poster responds and the contractor is notified", func(t *testing.T) {
		answered, err := bids.Respond(ctx, org.ID, submitted.ID, "4:12, see addendum 2")

		require.NoError(t, err)
		assert.Equal(t, string(marketplace.BidRequestStatusAnswered), answered.Status)
		assert.Equal(t, "4:12, see addendum 2", answered.Answer)

		require.Len(t, notifier.sent, 1)
		assert.Equal(t, contractor.ID, notifier.sent[0].UserID)
		assert.Equal(t, notification.TypeBidAnswered, notifier.sent[0].Type)
	})

	t.Run("answering twice fails", func(t *testing.T) {
		_, err := bids.Respond(ctx, org.ID, submitted.ID, "again")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestBidServiceListForRfp(t *testing.T) {
	bids, rfps, _, org, contractor := newBidServiceFixture(t)
	rfp := publishedRfp(t, rfps, org)
	ctx := context.Background()

	_, err := bids.Submit(ctx, contractor.ID, rfp.ID, "plans please")
	require.NoError(t, err)

	t.Run("poster sees the requests", func(t *testing.T) {
		requests, err := bids.ListForRfp(ctx, org.ID, rfp.ID)
		require.NoError(t, err)
		assert.Len(t, requests, 1)
	})

	t.Run("contractors cannot see the list", func(t *testing.T) {
		_, err := bids.ListForRfp(ctx, contractor.ID, rfp.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("contractor sees their own requests", func(t *testing.T) {
		requests, err := bids.ListForContractor(ctx, contractor.ID)
		require.NoError(t, err)
		assert.Len(t, requests, 1)
	})
}
