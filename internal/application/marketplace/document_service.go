package marketplace

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/shared"
)

// allowedDocumentTypes is the whitelist of content types accepted for RFP
// documents. Plan sets and addenda are overwhelmingly PDFs, with the odd
// spreadsheet or zipped drawing bundle.
var allowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"application/zip":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"image/jpeg": true,
	"image/png":  true,
	"text/plain": true,
	"text/csv":   true,
}

// DocumentStorage is the object storage interface the document flow needs.
// Implemented by the S3 adapter in the infrastructure layer.
type DocumentStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// DocumentServiceConfig holds upload limits and URL lifetimes
type DocumentServiceConfig struct {
	UploadURLExpiry    time.Duration
	DownloadURLExpiry  time.Duration
	MaxDocumentsPerRfp int64
	MaxFileSize        int64
}

// DefaultDocumentServiceConfig returns the standard limits
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		UploadURLExpiry:    15 * time.Minute,
		DownloadURLExpiry:  time.Hour,
		MaxDocumentsPerRfp: 25,
		MaxFileSize:        100 << 20, // 100 MiB, plan sets get big
	}
}

// InitiateUploadInput carries the metadata for a document upload
type InitiateUploadInput struct {
	Kind        string
	FileName    string
	ContentType string
	FileSize    int64
}

// DocumentService manages RFP document uploads through presigned URLs.
// Files never pass through the API server.
type DocumentService struct {
	docRepo marketplace.DocumentRepository
	rfpRepo marketplace.RfpRepository
	storage DocumentStorage
	config  DocumentServiceConfig
	logger  *zap.Logger
}

// NewDocumentService creates a document service with default limits
func NewDocumentService(
	docRepo marketplace.DocumentRepository,
	rfpRepo marketplace.RfpRepository,
	storage DocumentStorage,
	logger *zap.Logger,
) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		docRepo: docRepo,
		rfpRepo: rfpRepo,
		storage: storage,
		config:  DefaultDocumentServiceConfig(),
		logger:  logger,
	}
}

// SetConfig overrides the service limits
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// InitiateUpload creates a pending document record and returns a presigned
// upload URL. Only the RFP poster may attach documents.
func (s *DocumentService) InitiateUpload(ctx context.Context, userID, rfpID uuid.UUID, input InitiateUploadInput) (*UploadTicketDTO, error) {
	rfp, err := s.rfpRepo.FindByID(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if rfp.CreatedBy != userID {
		return nil, shared.ErrForbidden
	}

	kind := marketplace.DocumentKind(input.Kind)
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Unknown document kind")
	}
	if !allowedDocumentTypes[strings.ToLower(input.ContentType)] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed for RFP documents", input.ContentType))
	}
	if input.FileSize > s.config.MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("Documents are limited to %d bytes", s.config.MaxFileSize))
	}

	count, err := s.docRepo.CountByRfp(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	if count >= s.config.MaxDocumentsPerRfp {
		return nil, shared.NewDomainError("DOCUMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d documents per RFP", s.config.MaxDocumentsPerRfp))
	}

	storageKey := s.storageKey(rfpID, input.FileName)
	document, err := marketplace.NewDocument(rfpID, userID, kind, input.FileName, input.ContentType, input.FileSize, storageKey)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, document); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, input.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// drop the pending record, the client never got a URL for it
		_ = s.docRepo.Delete(ctx, document.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &UploadTicketDTO{
		DocumentID: document.ID,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ConfirmUpload verifies the file landed in storage and activates the document
func (s *DocumentService) ConfirmUpload(ctx context.Context, userID, documentID uuid.UUID) (*DocumentDTO, error) {
	document, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if document.UploadedBy != userID {
		return nil, shared.ErrForbidden
	}

	exists, err := s.storage.ObjectExists(ctx, document.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage, upload it first")
	}

	if err := document.Confirm(); err != nil {
		return nil, err
	}
	if err := s.docRepo.Save(ctx, document); err != nil {
		return nil, err
	}

	dto := toDocumentDTO(document)
	s.enrichWithURL(ctx, &dto, document)
	return &dto, nil
}

// ListForRfp returns the active documents of an RFP with download URLs
func (s *DocumentService) ListForRfp(ctx context.Context, rfpID uuid.UUID) ([]DocumentDTO, error) {
	documents, err := s.docRepo.FindActiveByRfp(ctx, rfpID)
	if err != nil {
		return nil, err
	}
	dtos := make([]DocumentDTO, len(documents))
	for i, d := range documents {
		dtos[i] = toDocumentDTO(d)
		s.enrichWithURL(ctx, &dtos[i], d)
	}
	return dtos, nil
}

// Delete removes a document record and its storage object
func (s *DocumentService) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	document, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return err
	}
	if document.UploadedBy != userID {
		return shared.ErrForbidden
	}

	if err := s.storage.DeleteObject(ctx, document.StorageKey); err != nil {
		// the record still goes, the orphaned object is harmless
		s.logger.Warn("failed to delete document from storage",
			zap.String("document_id", document.ID.String()),
			zap.String("storage_key", document.StorageKey),
			zap.Error(err))
	}
	return s.docRepo.Delete(ctx, documentID)
}

func (s *DocumentService) storageKey(rfpID uuid.UUID, fileName string) string {
	ext := filepath.Ext(fileName)
	return fmt.Sprintf("rfps/%s/documents/%s%s", rfpID.String(), uuid.New().String(), ext)
}

func (s *DocumentService) enrichWithURL(ctx context.Context, dto *DocumentDTO, document *marketplace.Document) {
	if document.Status != marketplace.DocumentStatusActive {
		return
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, document.StorageKey, s.config.DownloadURLExpiry)
	if err == nil {
		dto.URL = url
	}
}
