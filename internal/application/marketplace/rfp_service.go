package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
)

// Notifier delivers in-app notifications produced by marketplace actions
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, rfpID *uuid.UUID, notifType notification.Type, title, body string) error
}

// RfpService handles the RFP lifecycle from draft through award
type RfpService struct {
	rfpRepo   marketplace.RfpRepository
	bidRepo   marketplace.BidRequestRepository
	docRepo   marketplace.DocumentRepository
	userRepo  identity.Repository
	publisher shared.EventPublisher
	notifier  Notifier
	logger    *zap.Logger
}

// NewRfpService creates an RFP service. publisher and notifier may be nil.
func NewRfpService(
	rfpRepo marketplace.RfpRepository,
	bidRepo marketplace.BidRequestRepository,
	docRepo marketplace.DocumentRepository,
	userRepo identity.Repository,
	publisher shared.EventPublisher,
	notifier Notifier,
	logger *zap.Logger,
) *RfpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RfpService{
		rfpRepo:   rfpRepo,
		bidRepo:   bidRepo,
		docRepo:   docRepo,
		userRepo:  userRepo,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Create creates a draft RFP owned by the calling user's organization
func (s *RfpService) Create(ctx context.Context, userID uuid.UUID, input CreateRfpInput) (*RfpDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.CanPostRfps() {
		return nil, shared.ErrForbidden
	}
	if input.Title == "" || input.TradeCategory == "" {
		return nil, shared.ErrInvalidInput
	}
	if !input.BidDeadline.After(time.Now()) {
		return nil, shared.ErrDeadlinePassed
	}

	rfp := marketplace.NewRfp(user.ID, user.ID, input.Title, input.Description,
		input.TradeCategory, input.City, input.State, input.BidDeadline)
	rfp.QADeadline = input.QADeadline
	rfp.SiteVisitAt = input.SiteVisitAt

	if err := s.rfpRepo.Save(ctx, rfp); err != nil {
		return nil, err
	}
	dto := toRfpDTO(rfp)
	return &dto, nil
}

// Publish opens a draft RFP for bidding
func (s *RfpService) Publish(ctx context.Context, userID, rfpID uuid.UUID) (*RfpDTO, error) {
	rfp, err := s.ownedRfp(ctx, userID, rfpID)
	if err != nil {
		return nil, err
	}
	if err := rfp.Publish(); err != nil {
		return nil, err
	}
	if err := s.rfpRepo.Save(ctx, rfp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, rfp.Events())
	dto := toRfpDTO(rfp)
	return &dto, nil
}

// Award awards the RFP to a contractor and notifies them
func (s *RfpService) Award(ctx context.Context, userID, rfpID, contractorID uuid.UUID) (*RfpDTO, error) {
	rfp, err := s.ownedRfp(ctx, userID, rfpID)
	if err != nil {
		return nil, err
	}
	request, err := s.bidRepo.FindByRfpAndContractor(ctx, rfpID, contractorID)
	if err != nil {
		return nil, err
	}
	if request.Status == marketplace.BidRequestStatusWithdrawn {
		return nil, shared.ErrInvalidState
	}
	if err := rfp.Award(contractorID); err != nil {
		return nil, err
	}
	if err := s.rfpRepo.Save(ctx, rfp); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, rfp.Events())

	if s.notifier != nil {
		title := fmt.Sprintf("You won the bid on %q", rfp.Title)
		if err := s.notifier.Notify(ctx, contractorID, &rfp.ID, notification.TypeRfpAwarded, title, rfp.Title); err != nil {
			s.logger.Warn("failed to notify awarded contractor",
				zap.String("rfp_id", rfp.ID.String()),
				zap.Error(err))
		}
	}
	dto := toRfpDTO(rfp)
	return &dto, nil
}

// Close closes an open RFP without awarding it
func (s *RfpService) Close(ctx context.Context, userID, rfpID uuid.UUID) (*RfpDTO, error) {
	rfp, err := s.ownedRfp(ctx, userID, rfpID)
	if err != nil {
		return nil, err
	}
	if err := rfp.Close(); err != nil {
		return nil, err
	}
	if err := s.rfpRepo.Save(ctx, rfp); err != nil {
		return nil, err
	}
	dto := toRfpDTO(rfp)
	return &dto, nil
}

// Get returns the RFP detail with its bid request count and documents
func (s *RfpService) Get(ctx context.Context, rfpID uuid.UUID) (*RfpDetailDTO, error) {
	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	count, err := s.bidRepo.CountByRfp(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	documents, err := s.docRepo.FindActiveByRfp(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	detail := &RfpDetailDTO{
		RfpDTO:          toRfpDTO(rfp),
		BidRequestCount: count,
		Documents:       make([]DocumentDTO, len(documents)),
	}
	for i, d := range documents {
		detail.Documents[i] = toDocumentDTO(d)
	}
	return detail, nil
}

// Search returns a page of open listings matching the filter
func (s *RfpService) Search(ctx context.Context, input SearchInput) ([]RfpDTO, int64, error) {
	filter := marketplace.RfpFilter{
		TradeCategory: input.TradeCategory,
		City:          input.City,
		State:         input.State,
		Status:        marketplace.RfpStatusOpen,
		Query:         input.Query,
		FeaturedOnly:  input.FeaturedOnly,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}
	rfps, total, err := s.rfpRepo.Search(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return toRfpDTOs(rfps), total, nil
}

// ListMine returns every RFP posted by the calling user's organization
func (s *RfpService) ListMine(ctx context.Context, userID uuid.UUID) ([]RfpDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rfps, err := s.rfpRepo.FindByOrganization(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return toRfpDTOs(rfps), nil
}

// ownedRfp loads an RFP and verifies the caller posted it
func (s *RfpService) ownedRfp(ctx context.Context, userID, rfpID uuid.UUID) (*marketplace.Rfp, error) {
	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatedBy != userID {
		return nil, shared.ErrForbidden
	}
	return rfp, nil
}

func (s *RfpService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
