package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RfpFilter captures the search criteria for RFP listings
type RfpFilter struct {
	TradeCategory string
	City          string
	State         string
	Status        RfpStatus
	Query         string
	FeaturedOnly  bool
	Page          int
	PageSize      int
}

// RfpRepository defines the persistence interface for RFPs
type RfpRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Rfp, error)
	FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*Rfp, error)
	// Search returns a page of RFPs matching the filter plus the total match count.
	// Featured listings that are still active sort before everything else.
	Search(ctx context.Context, filter RfpFilter) ([]*Rfp, int64, error)
	// FindOpenWithDeadlineBefore returns open RFPs whose bid deadline falls
	// inside (now, until]. Used by the deadline sweep.
	FindOpenWithDeadlineBefore(ctx context.Context, until time.Time) ([]*Rfp, error)
	Save(ctx context.Context, rfp *Rfp) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BidRequestRepository defines the persistence interface for bid requests
type BidRequestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BidRequest, error)
	FindByRfp(ctx context.Context, rfpID uuid.UUID) ([]*BidRequest, error)
	FindByContractor(ctx context.Context, contractorID uuid.UUID) ([]*BidRequest, error)
	FindByRfpAndContractor(ctx context.Context, rfpID, contractorID uuid.UUID) (*BidRequest, error)
	CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error)
	Save(ctx context.Context, request *BidRequest) error
}

// DocumentRepository defines the persistence interface for RFP documents
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// FindActiveByRfp returns confirmed documents for an RFP, oldest first
	FindActiveByRfp(ctx context.Context, rfpID uuid.UUID) ([]*Document, error)
	CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error)
	Save(ctx context.Context, document *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FeaturedListingRepository defines the persistence interface for listing purchases
type FeaturedListingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeaturedListing, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*FeaturedListing, error)
	Save(ctx context.Context, listing *FeaturedListing) error
}
