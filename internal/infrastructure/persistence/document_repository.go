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

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

var _ marketplace.DocumentRepository = (*GormDocumentRepository)(nil)

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByRfp finds the confirmed documents of an RFP, oldest first
func (r *GormDocumentRepository) FindActiveByRfp(ctx context.Context, rfpID uuid.UUID) ([]*marketplace.Document, error) {
	var documentModels []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("rfp_id = ? AND status = ?", rfpID, string(marketplace.DocumentStatusActive)).
		Order("created_at ASC").
		Find(&documentModels).Error; err != nil {
		return nil, err
	}
	documents := make([]*marketplace.Document, len(documentModels))
	for i := range documentModels {
		documents[i] = documentModels[i].ToDomain()
	}
	return documents, nil
}

// CountByRfp counts all documents of an RFP, pending included
func (r *GormDocumentRepository) CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("rfp_id = ?", rfpID).
		Count(&count).Error
	return count, err
}

// Save creates or updates a document record
func (r *GormDocumentRepository) Save(ctx context.Context, document *marketplace.Document) error {
	model := models.DocumentModelFromDomain(document)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a document record
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
