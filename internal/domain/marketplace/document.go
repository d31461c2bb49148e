package marketplace

import (
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentStatus tracks whether the underlying file made it into storage
type DocumentStatus string

const (
	DocumentStatusPending DocumentStatus = "pending"
	DocumentStatusActive  DocumentStatus = "active"
)

// DocumentKind classifies RFP documents
type DocumentKind string

const (
	DocumentKindPlanSet  DocumentKind = "plan_set"
	DocumentKindAddendum DocumentKind = "addendum"
	DocumentKindOther    DocumentKind = "other"
)

// IsValid reports whether the kind is one of the known document kinds
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindPlanSet, DocumentKindAddendum, DocumentKindOther:
		return true
	}
	return false
}

// Document is a file attached to an RFP, such as a plan set or an addendum.
// Documents start pending and become active once the upload is confirmed
// against object storage.
type Document struct {
	shared.BaseEntity
	RfpID       uuid.UUID
	Kind        DocumentKind
	FileName    string
	ContentType string
	FileSize    int64
	StorageKey  string
	Status      DocumentStatus
	UploadedBy  uuid.UUID
}

// NewDocument creates a pending document record for an RFP
func NewDocument(rfpID, uploadedBy uuid.UUID, kind DocumentKind, fileName, contentType string, fileSize int64, storageKey string) (*Document, error) {
	if !kind.IsValid() || fileName == "" || contentType == "" || storageKey == "" {
		return nil, shared.ErrInvalidInput
	}
	if fileSize <= 0 {
		return nil, shared.ErrInvalidInput
	}
	return &Document{
		BaseEntity:  shared.NewBaseEntity(),
		RfpID:       rfpID,
		Kind:        kind,
		FileName:    fileName,
		ContentType: contentType,
		FileSize:    fileSize,
		StorageKey:  storageKey,
		Status:      DocumentStatusPending,
		UploadedBy:  uploadedBy,
	}, nil
}

// Confirm activates a pending document once the file exists in storage
func (d *Document) Confirm() error {
	if d.Status != DocumentStatusPending {
		return shared.ErrInvalidState
	}
	d.Status = DocumentStatusActive
	d.Touch()
	return nil
}
