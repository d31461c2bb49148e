package marketplace

import (
	"time"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BidRequestStatus represents the state of a contractor's bid request (RFI)
type BidRequestStatus string

const (
	BidRequestStatusPending   BidRequestStatus = "pending"
	BidRequestStatusAnswered  BidRequestStatus = "answered"
	BidRequestStatusWithdrawn BidRequestStatus = "withdrawn"
)

// BidRequest represents a contractor's request for information on an RFP
type BidRequest struct {
	shared.BaseEntity
	RfpID        uuid.UUID
	ContractorID uuid.UUID
	Message      string
	Status       BidRequestStatus
	Answer       string
	AnsweredAt   *time.Time
	events       []shared.DomainEvent
}

// NewBidRequest creates a new pending bid request against an open RFP
func NewBidRequest(rfp *Rfp, contractorID uuid.UUID, message string) (*BidRequest, error) {
	if rfp.Status != RfpStatusOpen {
		return nil, shared.ErrNotOpen
	}
	if !rfp.CanReceiveBids() {
		return nil, shared.ErrDeadlinePassed
	}
	br := &BidRequest{
		BaseEntity:   shared.NewBaseEntity(),
		RfpID:        rfp.ID,
		ContractorID: contractorID,
		Message:      message,
		Status:       BidRequestStatusPending,
	}
	br.events = append(br.events, NewBidRequestSubmittedEvent(br, rfp.OrganizationID))
	return br, nil
}

// Respond records the organization's answer to the bid request
func (b *BidRequest) Respond(answer string) error {
	if b.Status != BidRequestStatusPending {
		return shared.ErrInvalidState
	}
	now := time.Now()
	b.Status = BidRequestStatusAnswered
	b.Answer = answer
	b.AnsweredAt = &now
	b.TouchAt(now)
	b.events = append(b.events, NewBidRequestAnsweredEvent(b))
	return nil
}

// Withdraw marks a pending bid request as withdrawn by the contractor
func (b *BidRequest) Withdraw() error {
	if b.Status != BidRequestStatusPending {
		return shared.ErrInvalidState
	}
	b.Status = BidRequestStatusWithdrawn
	b.Touch()
	return nil
}

// Events returns and clears the recorded domain events
func (b *BidRequest) Events() []shared.DomainEvent {
	events := b.events
	b.events = nil
	return events
}
