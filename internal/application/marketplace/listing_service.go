package marketplace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
)

// CreateCheckoutInput carries what the payment provider needs for a session
type CreateCheckoutInput struct {
	ListingID  uuid.UUID
	RfpTitle   string
	Amount     decimal.Decimal
	Currency   string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the hosted payment page created by the provider
type CheckoutSession struct {
	SessionID string
	URL       string
}

// CheckoutProvider creates hosted checkout sessions. Implemented by the
// Stripe adapter in the infrastructure layer.
type CheckoutProvider interface {
	CreateListingCheckout(ctx context.Context, input CreateCheckoutInput) (*CheckoutSession, error)
}

// ListingConfig holds the fixed price of a featured listing purchase
type ListingConfig struct {
	Price      decimal.Decimal
	Currency   string
	Duration   time.Duration
	SuccessURL string
	CancelURL  string
}

// ListingService sells featured placement for open RFPs. Payment goes
// through a hosted checkout page, the webhook completes the purchase.
type ListingService struct {
	listingRepo marketplace.FeaturedListingRepository
	rfpRepo     marketplace.RfpRepository
	checkout    CheckoutProvider
	publisher   shared.EventPublisher
	config      ListingConfig
	logger      *zap.Logger
}

// NewListingService creates a listing service. publisher may be nil.
func NewListingService(
	listingRepo marketplace.FeaturedListingRepository,
	rfpRepo marketplace.RfpRepository,
	checkout CheckoutProvider,
	publisher shared.EventPublisher,
	config ListingConfig,
	logger *zap.Logger,
) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		listingRepo: listingRepo,
		rfpRepo:     rfpRepo,
		checkout:    checkout,
		publisher:   publisher,
		config:      config,
		logger:      logger,
	}
}

// StartCheckout creates a pending listing purchase and a checkout session.
// Only the poster of an open RFP can feature it.
func (s *ListingService) StartCheckout(ctx context.Context, userID, rfpID uuid.UUID) (*CheckoutDTO, error) {
	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatedBy != userID {
		return nil, shared.ErrForbidden
	}
	if rfp.Status != marketplace.RfpStatusOpen {
		return nil, shared.ErrInvalidState
	}

	listing, err := marketplace.NewFeaturedListing(rfp.ID, rfp.OrganizationID,
		s.config.Price, s.config.Currency, s.config.Duration)
	if err != nil {
		return nil, err
	}

	session, err := s.checkout.CreateListingCheckout(ctx, CreateCheckoutInput{
		ListingID:  listing.ID,
		RfpTitle:   rfp.Title,
		Amount:     listing.Amount,
		Currency:   listing.Currency,
		SuccessURL: s.config.SuccessURL,
		CancelURL:  s.config.CancelURL,
	})
	if err != nil {
		return nil, err
	}

	if err := listing.AttachCheckoutSession(session.SessionID); err != nil {
		return nil, err
	}
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return nil, err
	}

	return &CheckoutDTO{
		ListingID:   listing.ID,
		SessionID:   session.SessionID,
		CheckoutURL: session.URL,
		Amount:      listing.Amount,
		Currency:    listing.Currency,
	}, nil
}

// CompleteCheckout handles the payment provider's completion callback.
// Payment webhooks retry, so an already paid listing is not an error.
func (s *ListingService) CompleteCheckout(ctx context.Context, sessionID string) error {
	listing, err := s.listingRepo.FindByCheckoutSession(ctx, sessionID)
	if err != nil {
		return err
	}

	expiresAt, err := listing.MarkPaid()
	if err != nil {
		if errors.Is(err, shared.ErrInvalidState) && listing.Status == marketplace.FeaturedListingStatusPaid {
			return nil
		}
		return err
	}
	if err := s.listingRepo.Save(ctx, listing); err != nil {
		return err
	}

	rfp, err := s.rfpRepo.FindByID(ctx, listing.RfpID)
	if err != nil {
		return err
	}
	if err := rfp.Feature(expiresAt); err != nil {
		// the purchase stands even if the RFP closed in the meantime
		s.logger.Warn("paid listing could not be featured",
			zap.String("rfp_id", rfp.ID.String()),
			zap.String("listing_id", listing.ID.String()),
			zap.Error(err))
		return nil
	}
	if err := s.rfpRepo.Save(ctx, rfp); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, rfp.Events()...); err != nil {
			s.logger.Warn("failed to publish domain events", zap.Error(err))
		}
	}
	s.logger.Info("featured listing activated",
		zap.String("rfp_id", rfp.ID.String()),
		zap.Time("featured_until", expiresAt))
	return nil
}

// ExpireCheckout handles the provider's session-expired callback
func (s *ListingService) ExpireCheckout(ctx context.Context, sessionID string) error {
	listing, err := s.listingRepo.FindByCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := listing.Expire(); err != nil {
		// already paid or expired, nothing to do
		return nil
	}
	return s.listingRepo.Save(ctx, listing)
}
