package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/bidboard/backend/internal/infrastructure/persistence/models"
)

// GormRfpRepository implements RfpRepository using GORM
type GormRfpRepository struct {
	db *gorm.DB
}

var _ marketplace.RfpRepository = (*GormRfpRepository)(nil)

// NewGormRfpRepository creates a new GormRfpRepository
func NewGormRfpRepository(db *gorm.DB) *GormRfpRepository {
	return &GormRfpRepository{db: db}
}

// WithTx returns a new repository instance bound to the given transaction
func (r *GormRfpRepository) WithTx(tx *gorm.DB) *GormRfpRepository {
	return &GormRfpRepository{db: tx}
}

// FindByID finds an RFP by its ID
func (r *GormRfpRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Rfp, error) {
	var model models.RfpModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrganization finds all RFPs posted by an organization
func (r *GormRfpRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*marketplace.Rfp, error) {
	var rfpModels []models.RfpModel
	if err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Find(&rfpModels).Error; err != nil {
		return nil, err
	}
	return toDomainRfps(rfpModels), nil
}

// Search returns a page of RFPs matching the filter. Active featured
// listings sort first, then newest first.
func (r *GormRfpRepository) Search(ctx context.Context, filter marketplace.RfpFilter) ([]*marketplace.Rfp, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RfpModel{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.TradeCategory != "" {
		query = query.Where("trade_category = ?", filter.TradeCategory)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	now := time.Now()
	if filter.FeaturedOnly {
		query = query.Where("featured = ? AND featured_until > ?", true, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var rfpModels []models.RfpModel
	if err := query.
		Order("featured DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rfpModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainRfps(rfpModels), total, nil
}

// FindOpenWithDeadlineBefore returns open RFPs whose bid deadline falls
// inside (now, until]
func (r *GormRfpRepository) FindOpenWithDeadlineBefore(ctx context.Context, until time.Time) ([]*marketplace.Rfp, error) {
	var rfpModels []models.RfpModel
	now := time.Now()
	if err := r.db.WithContext(ctx).
		Where("status = ? AND bid_deadline > ? AND bid_deadline <= ?", string(marketplace.RfpStatusOpen), now, until).
		Order("bid_deadline ASC").
		Find(&rfpModels).Error; err != nil {
		return nil, err
	}
	return toDomainRfps(rfpModels), nil
}

// Save creates or updates an RFP
func (r *GormRfpRepository) Save(ctx context.Context, rfp *marketplace.Rfp) error {
	model := models.RfpModelFromDomain(rfp)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes an RFP
func (r *GormRfpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.RfpModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainRfps(rfpModels []models.RfpModel) []*marketplace.Rfp {
	rfps := make([]*marketplace.Rfp, len(rfpModels))
	for i := range rfpModels {
		rfps[i] = rfpModels[i].ToDomain()
	}
	return rfps
}
