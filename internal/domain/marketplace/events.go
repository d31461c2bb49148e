package marketplace

import (
	"time"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeRfpPublished        = "marketplace.rfp.published"
	EventTypeRfpAwarded          = "marketplace.rfp.awarded"
	EventTypeRfpFeatured         = "marketplace.rfp.featured"
	EventTypeBidRequestSubmitted = "marketplace.bid_request.submitted"
	EventTypeBidRequestAnswered  = "marketplace.bid_request.answered"
)

// RfpPublishedEvent is raised when a draft RFP is opened for bidding
type RfpPublishedEvent struct {
	shared.BaseDomainEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	TradeCategory  string    `json:"trade_category"`
	BidDeadline    time.Time `json:"bid_deadline"`
}

func NewRfpPublishedEvent(rfp *Rfp) *RfpPublishedEvent {
	return &RfpPublishedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRfpPublished, "Rfp", rfp.ID),
		OrganizationID:  rfp.OrganizationID,
		Title:           rfp.Title,
		TradeCategory:   rfp.TradeCategory,
		BidDeadline:     rfp.BidDeadline,
	}
}

// RfpAwardedEvent is raised when an RFP is awarded to a contractor
type RfpAwardedEvent struct {
	shared.BaseDomainEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	ContractorID   uuid.UUID `json:"contractor_id"`
	Title          string    `json:"title"`
}

func NewRfpAwardedEvent(rfp *Rfp, contractorID uuid.UUID) *RfpAwardedEvent {
	return &RfpAwardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRfpAwarded, "Rfp", rfp.ID),
		OrganizationID:  rfp.OrganizationID,
		ContractorID:    contractorID,
		Title:           rfp.Title,
	}
}

// RfpFeaturedEvent is raised when a paid featured listing becomes active
type RfpFeaturedEvent struct {
	shared.BaseDomainEvent
	OrganizationID uuid.UUID `json:"organization_id"`
	FeaturedUntil  time.Time `json:"featured_until"`
}

func NewRfpFeaturedEvent(rfp *Rfp, until time.Time) *RfpFeaturedEvent {
	return &RfpFeaturedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRfpFeatured, "Rfp", rfp.ID),
		OrganizationID:  rfp.OrganizationID,
		FeaturedUntil:   until,
	}
}

// BidRequestSubmittedEvent is raised when a contractor submits a bid request
type BidRequestSubmittedEvent struct {
	shared.BaseDomainEvent
	RfpID          uuid.UUID `json:"rfp_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	ContractorID   uuid.UUID `json:"contractor_id"`
}

func NewBidRequestSubmittedEvent(br *BidRequest, organizationID uuid.UUID) *BidRequestSubmittedEvent {
	return &BidRequestSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidRequestSubmitted, "BidRequest", br.ID),
		RfpID:           br.RfpID,
		OrganizationID:  organizationID,
		ContractorID:    br.ContractorID,
	}
}

// BidRequestAnsweredEvent is raised when an organization answers a bid request
type BidRequestAnsweredEvent struct {
	shared.BaseDomainEvent
	RfpID        uuid.UUID `json:"rfp_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
}

func NewBidRequestAnsweredEvent(br *BidRequest) *BidRequestAnsweredEvent {
	return &BidRequestAnsweredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBidRequestAnswered, "BidRequest", br.ID),
		RfpID:           br.RfpID,
		ContractorID:    br.ContractorID,
	}
}
