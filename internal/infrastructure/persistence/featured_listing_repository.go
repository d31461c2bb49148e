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

// GormFeaturedListingRepository implements FeaturedListingRepository using GORM
type GormFeaturedListingRepository struct {
	db *gorm.DB
}

var _ marketplace.FeaturedListingRepository = (*GormFeaturedListingRepository)(nil)

// NewGormFeaturedListingRepository creates a new GormFeaturedListingRepository
func NewGormFeaturedListingRepository(db *gorm.DB) *GormFeaturedListingRepository {
	return &GormFeaturedListingRepository{db: db}
}

// FindByID finds a listing purchase by its ID
func (r *GormFeaturedListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.FeaturedListing, error) {
	var model models.FeaturedListingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCheckoutSession finds a listing purchase by its Stripe session ID
func (r *GormFeaturedListingRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*marketplace.FeaturedListing, error) {
	var model models.FeaturedListingModel
	if err := r.db.WithContext(ctx).First(&model, "stripe_session_id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a listing purchase
func (r *GormFeaturedListingRepository) Save(ctx context.Context, listing *marketplace.FeaturedListing) error {
	model := models.FeaturedListingModelFromDomain(listing)
	return r.db.WithContext(ctx).Save(model).Error
}
