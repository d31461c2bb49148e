package marketplace

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
)

// BidService handles contractor bid requests and organization responses
type BidService struct {
	bidRepo   marketplace.BidRequestRepository
	rfpRepo   marketplace.RfpRepository
	userRepo  identity.Repository
	publisher shared.EventPublisher
	notifier  Notifier
	logger    *zap.Logger
}

// NewBidService creates a bid request service. publisher and notifier may be nil.
func NewBidService(
	bidRepo marketplace.BidRequestRepository,
	rfpRepo marketplace.RfpRepository,
	userRepo identity.Repository,
	publisher shared.EventPublisher,
	notifier Notifier,
	logger *zap.Logger,
) *BidService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BidService{
		bidRepo:   bidRepo,
		rfpRepo:   rfpRepo,
		userRepo:  userRepo,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Submit creates a bid request against an open RFP and notifies the poster.
// A contractor gets one live request per RFP.
func (s *BidService) Submit(ctx context.Context, contractorID, rfpID uuid.UUID, message string) (*BidRequestDTO, error) {
	contractor, err := s.userRepo.FindByID(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if !contractor.CanSubmitBids() {
		return nil, shared.ErrForbidden
	}

	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}

	existing, err := s.bidRepo.FindByRfpAndContractor(ctx, rfpID, contractorID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status != marketplace.BidRequestStatusWithdrawn {
		return nil, shared.ErrAlreadyExists
	}

	request, err := marketplace.NewBidRequest(rfp, contractorID, message)
	if err != nil {
		return nil, err
	}
	if err := s.bidRepo.Save(ctx, request); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, request.Events())

	if s.notifier != nil {
		title := fmt.Sprintf("%s requested bid documents for %q", contractor.CompanyName, rfp.Title)
		if err := s.notifier.Notify(ctx, rfp.CreatedBy, &rfp.ID, notification.TypeBidReceived, title, message); err != nil {
			s.logger.Warn("failed to notify rfp poster",
				zap.String("rfp_id", rfp.ID.String()),
				zap.Error(err))
		}
	}
	dto := toBidRequestDTO(request)
	return &dto, nil
}

// Respond records the poster's answer and notifies the contractor
func (s *BidService) Respond(ctx context.Context, userID, requestID uuid.UUID, answer string) (*BidRequestDTO, error) {
	request, err := s.bidRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	rfp, err := s.rfpRepo.FindByID(ctx, request.RfpID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatedBy != userID {
		return nil, shared.ErrForbidden
	}
	if err := request.Respond(answer); err != nil {
		return nil, err
	}
	if err := s.bidRepo.Save(ctx, request); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, request.Events())

	if s.notifier != nil {
		title := fmt.Sprintf("Your bid request on %q was answered", rfp.Title)
		if err := s.notifier.Notify(ctx, request.ContractorID, &rfp.ID, notification.TypeBidAnswered, title, answer); err != nil {
			s.logger.Warn("failed to notify contractor",
				zap.String("bid_request_id", request.ID.String()),
				zap.Error(err))
		}
	}
	dto := toBidRequestDTO(request)
	return &dto, nil
}

// Withdraw lets a contractor withdraw their own pending request
func (s *BidService) Withdraw(ctx context.Context, contractorID, requestID uuid.UUID) error {
	request, err := s.bidRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ContractorID != contractorID {
		return shared.ErrForbidden
	}
	if err := request.Withdraw(); err != nil {
		return err
	}
	return s.bidRepo.Save(ctx, request)
}

// ListForRfp returns all bid requests on an RFP. Only the poster may see them.
func (s *BidService) ListForRfp(ctx context.Context, userID, rfpID uuid.UUID) ([]BidRequestDTO, error) {
	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatedBy != userID {
		return nil, shared.ErrForbidden
	}
	requests, err := s.bidRepo.FindByRfp(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	return toBidRequestDTOs(requests), nil
}

// ListForContractor returns the contractor's own bid requests
func (s *BidService) ListForContractor(ctx context.Context, contractorID uuid.UUID) ([]BidRequestDTO, error) {
	requests, err := s.bidRepo.FindByContractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	return toBidRequestDTOs(requests), nil
}

func (s *BidService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
