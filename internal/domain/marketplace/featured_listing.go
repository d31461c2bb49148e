package marketplace

import (
	"time"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeaturedListingStatus represents the payment state of a featured listing purchase
type FeaturedListingStatus string

const (
	FeaturedListingStatusPending FeaturedListingStatus = "pending"
	FeaturedListingStatusPaid    FeaturedListingStatus = "paid"
	FeaturedListingStatusExpired FeaturedListingStatus = "expired"
)

// FeaturedListing represents a paid promotion of an RFP on the marketplace front page
type FeaturedListing struct {
	shared.BaseEntity
	RfpID           uuid.UUID
	OrganizationID  uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	Duration        time.Duration
	StripeSessionID string
	Status          FeaturedListingStatus
	PaidAt          *time.Time
}

// NewFeaturedListing creates a pending listing purchase awaiting payment
func NewFeaturedListing(rfpID, organizationID uuid.UUID, amount decimal.Decimal, currency string, duration time.Duration) (*FeaturedListing, error) {
	if amount.LessThanOrEqual(decimal.Zero) || duration <= 0 {
		return nil, shared.ErrInvalidInput
	}
	return &FeaturedListing{
		BaseEntity:     shared.NewBaseEntity(),
		RfpID:          rfpID,
		OrganizationID: organizationID,
		Amount:         amount,
		Currency:       currency,
		Duration:       duration,
		Status:         FeaturedListingStatusPending,
	}, nil
}

// AttachCheckoutSession records the Stripe checkout session created for this purchase
func (f *FeaturedListing) AttachCheckoutSession(sessionID string) error {
	if f.Status != FeaturedListingStatusPending {
		return shared.ErrInvalidState
	}
	f.StripeSessionID = sessionID
	f.Touch()
	return nil
}

// MarkPaid records a successful payment and returns the time the feature expires
func (f *FeaturedListing) MarkPaid() (time.Time, error) {
	if f.Status != FeaturedListingStatusPending {
		return time.Time{}, shared.ErrInvalidState
	}
	now := time.Now()
	f.Status = FeaturedListingStatusPaid
	f.PaidAt = &now
	f.TouchAt(now)
	return now.Add(f.Duration), nil
}

// Expire marks an unpaid listing purchase as expired
func (f *FeaturedListing) Expire() error {
	if f.Status != FeaturedListingStatusPending {
		return shared.ErrInvalidState
	}
	f.Status = FeaturedListingStatusExpired
	f.Touch()
	return nil
}
