package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/bidboard/backend/internal/infrastructure/persistence/models"
)

// GormBidRequestRepository implements BidRequestRepository using GORM
type GormBidRequestRepository struct {
	db *gorm.DB
}

var _ marketplace.BidRequestRepository = (*GormBidRequestRepository)(nil)

// NewGormBidRequestRepository creates a new GormBidRequestRepository
func NewGormBidRequestRepository(db *gorm.DB) *GormBidRequestRepository {
	return &GormBidRequestRepository{db: db}
}

// FindByID finds a bid request by its ID
func (r *GormBidRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.BidRequest, error) {
	var model models.BidRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRfp finds all bid requests on an RFP
func (r *GormBidRequestRepository) FindByRfp(ctx context.Context, rfpID uuid.UUID) ([]*marketplace.BidRequest, error) {
	var requestModels []models.BidRequestModel
	if err := r.db.WithContext(ctx).
		Where("rfp_id = ?", rfpID).
		Order("created_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	return toDomainBidRequests(requestModels), nil
}

// FindByContractor finds all bid requests a contractor submitted
func (r *GormBidRequestRepository) FindByContractor(ctx context.Context, contractorID uuid.UUID) ([]*marketplace.BidRequest, error) {
	var requestModels []models.BidRequestModel
	if err := r.db.WithContext(ctx).
		Where("contractor_id = ?", contractorID).
		Order("created_at DESC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	return toDomainBidRequests(requestModels), nil
}

// FindByRfpAndContractor finds a contractor's bid request on one RFP
func (r *GormBidRequestRepository) FindByRfpAndContractor(ctx context.Context, rfpID, contractorID uuid.UUID) (*marketplace.BidRequest, error) {
	var model models.BidRequestModel
	if err := r.db.WithContext(ctx).
		First(&model, "rfp_id = ? AND contractor_id = ?", rfpID, contractorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByRfp counts the bid requests on an RFP
func (r *GormBidRequestRepository) CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.BidRequestModel{}).
		Where("rfp_id = ?", rfpID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a bid request
func (r *GormBidRequestRepository) Save(ctx context.Context, request *marketplace.BidRequest) error {
	model := models.BidRequestModelFromDomain(request)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainBidRequests(requestModels []models.BidRequestModel) []*marketplace.BidRequest {
	requests := make([]*marketplace.BidRequest, len(requestModels))
	for i := range requestModels {
		requests[i] = requestModels[i].ToDomain()
	}
	return requests
}
