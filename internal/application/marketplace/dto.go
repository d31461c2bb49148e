package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bidboard/backend/internal/domain/marketplace"
)

// CreateRfpInput carries the fields for a new RFP
type CreateRfpInput struct {
	Title         string
	Description   string
	TradeCategory string
	City          string
	State         string
	BidDeadline   time.Time
	QADeadline    *time.Time
	SiteVisitAt   *time.Time
}

// SearchInput captures the public listing search parameters
type SearchInput struct {
	TradeCategory string
	City          string
	State         string
	Query         string
	FeaturedOnly  bool
	Page          int
	PageSize      int
}

// RfpDTO is the API shape of an RFP listing
type RfpDTO struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TradeCategory string     `json:"trade_category"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Status        string     `json:"status"`
	BidDeadline   time.Time  `json:"bid_deadline"`
	QADeadline    *time.Time `json:"qa_deadline,omitempty"`
	SiteVisitAt   *time.Time `json:"site_visit_at,omitempty"`
	Featured      bool       `json:"featured"`
	FeaturedUntil *time.Time `json:"featured_until,omitempty"`
	AwardedTo     *uuid.UUID `json:"awarded_to,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RfpDetailDTO adds the aggregate counts shown on the detail page
type RfpDetailDTO struct {
	RfpDTO
	BidRequestCount int64         `json:"bid_request_count"`
	Documents       []DocumentDTO `json:"documents"`
}

// BidRequestDTO is the API shape of a contractor's bid request
type BidRequestDTO struct {
	ID           uuid.UUID  `json:"id"`
	RfpID        uuid.UUID  `json:"rfp_id"`
	ContractorID uuid.UUID  `json:"contractor_id"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	Answer       string     `json:"answer,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DocumentDTO is the API shape of an RFP document
type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	RfpID       uuid.UUID `json:"rfp_id"`
	Kind        string    `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	Status      string    `json:"status"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// UploadTicketDTO is returned when a document upload is initiated
type UploadTicketDTO struct {
	DocumentID uuid.UUID `json:"document_id"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CheckoutDTO points the buyer at the hosted payment page
type CheckoutDTO struct {
	ListingID   uuid.UUID       `json:"listing_id"`
	SessionID   string          `json:"session_id"`
	CheckoutURL string          `json:"checkout_url"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func toRfpDTO(r *marketplace.Rfp) RfpDTO {
	return RfpDTO{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		TradeCategory: r.TradeCategory,
		City:          r.City,
		State:         r.State,
		Status:        string(r.Status),
		BidDeadline:   r.BidDeadline,
		QADeadline:    r.QADeadline,
		SiteVisitAt:   r.SiteVisitAt,
		Featured:      r.Featured,
		FeaturedUntil: r.FeaturedUntil,
		AwardedTo:     r.AwardedTo,
		CreatedAt:     r.CreatedAt,
	}
}

func toRfpDTOs(rfps []*marketplace.Rfp) []RfpDTO {
	dtos := make([]RfpDTO, len(rfps))
	for i, r := range rfps {
		dtos[i] = toRfpDTO(r)
	}
	return dtos
}

func toBidRequestDTO(b *marketplace.BidRequest) BidRequestDTO {
	return BidRequestDTO{
		ID:           b.ID,
		RfpID:        b.RfpID,
		ContractorID: b.ContractorID,
		Message:      b.Message,
		Status:       string(b.Status),
		Answer:       b.Answer,
		AnsweredAt:   b.AnsweredAt,
		CreatedAt:    b.CreatedAt,
	}
}

func toBidRequestDTOs(requests []*marketplace.BidRequest) []BidRequestDTO {
	dtos := make([]BidRequestDTO, len(requests))
	for i, b := range requests {
		dtos[i] = toBidRequestDTO(b)
	}
	return dtos
}

func toDocumentDTO(d *marketplace.Document) DocumentDTO {
	return DocumentDTO{
		ID:          d.ID,
		RfpID:       d.RfpID,
		Kind:        string(d.Kind),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		FileSize:    d.FileSize,
		Status:      string(d.Status),
		CreatedAt:   d.CreatedAt,
	}
}
