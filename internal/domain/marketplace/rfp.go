package marketplace

import (
	"time"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RfpStatus represents the lifecycle state of an RFP
type RfpStatus string

const (
	RfpStatusDraft   RfpStatus = "draft"
	RfpStatusOpen    RfpStatus = "open"
	RfpStatusAwarded RfpStatus = "awarded"
	RfpStatusClosed  RfpStatus = "closed"
)

// Rfp represents a request for proposal posted by a government organization
type Rfp struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	CreatedBy      uuid.UUID
	Title          string
	Description    string
	TradeCategory  string
	City           string
	State          string
	Status         RfpStatus
	BidDeadline    time.Time
	QADeadline     *time.Time // deadline for contractor questions (RFI submissions)
	SiteVisitAt    *time.Time // scheduled pre-bid site visit
	Featured       bool
	FeaturedUntil  *time.Time
	AwardedTo      *uuid.UUID
	events         []shared.DomainEvent
}

// NewRfp creates a new RFP in draft status
func NewRfp(organizationID, createdBy uuid.UUID, title, description, tradeCategory, city, state string, bidDeadline time.Time) *Rfp {
	return &Rfp{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		CreatedBy:      createdBy,
		Title:          title,
		Description:    description,
		TradeCategory:  tradeCategory,
		City:           city,
		State:          state,
		Status:         RfpStatusDraft,
		BidDeadline:    bidDeadline,
	}
}

// Publish transitions a draft RFP to open so contractors can bid on it
func (r *Rfp) Publish() error {
	if r.Status != RfpStatusDraft {
		return shared.ErrInvalidState
	}
	if !r.BidDeadline.After(time.Now()) {
		return shared.ErrDeadlinePassed
	}
	r.Status = RfpStatusOpen
	r.Touch()
	r.recordEvent(NewRfpPublishedEvent(r))
	return nil
}

// Award marks the RFP as awarded to a contractor
func (r *Rfp) Award(contractorID uuid.UUID) error {
	if r.Status != RfpStatusOpen {
		return shared.ErrInvalidState
	}
	r.Status = RfpStatusAwarded
	r.AwardedTo = &contractorID
	r.Touch()
	r.recordEvent(NewRfpAwardedEvent(r, contractorID))
	return nil
}

// Close closes the RFP without awarding it
func (r *Rfp) Close() error {
	if r.Status != RfpStatusOpen {
		return shared.ErrInvalidState
	}
	r.Status = RfpStatusClosed
	r.Touch()
	return nil
}

// Feature marks the RFP as a paid featured listing until the given time
func (r *Rfp) Feature(until time.Time) error {
	if r.Status != RfpStatusOpen {
		return shared.ErrInvalidState
	}
	if !until.After(time.Now()) {
		return shared.ErrInvalidInput
	}
	r.Featured = true
	r.FeaturedUntil = &until
	r.Touch()
	r.recordEvent(NewRfpFeaturedEvent(r, until))
	return nil
}

// CanReceiveBids returns true if contractors may still submit bid requests
func (r *Rfp) CanReceiveBids() bool {
	return r.Status == RfpStatusOpen && time.Now().Before(r.BidDeadline)
}

// IsFeaturedAt returns true if the listing is featured at the given time
func (r *Rfp) IsFeaturedAt(at time.Time) bool {
	return r.Featured && r.FeaturedUntil != nil && at.Before(*r.FeaturedUntil)
}

// DeadlineWithin returns true if the bid deadline falls inside (now, now+d]
func (r *Rfp) DeadlineWithin(now time.Time, d time.Duration) bool {
	return r.BidDeadline.After(now) && !r.BidDeadline.After(now.Add(d))
}

// QADeadlineWithin returns true if the Q&A deadline falls inside (now, now+d]
func (r *Rfp) QADeadlineWithin(now time.Time, d time.Duration) bool {
	if r.QADeadline == nil {
		return false
	}
	return r.QADeadline.After(now) && !r.QADeadline.After(now.Add(d))
}

// SiteVisitWithin returns true if the site visit falls inside (now, now+d]
func (r *Rfp) SiteVisitWithin(now time.Time, d time.Duration) bool {
	if r.SiteVisitAt == nil {
		return false
	}
	return r.SiteVisitAt.After(now) && !r.SiteVisitAt.After(now.Add(d))
}

// Events returns and clears the recorded domain events
func (r *Rfp) Events() []shared.DomainEvent {
	events := r.events
	r.events = nil
	return events
}

func (r *Rfp) recordEvent(event shared.DomainEvent) {
	r.events = append(r.events, event)
}
