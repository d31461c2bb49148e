// Package storage provides the object storage backend for RFP documents.
package storage

import (
	"context"
	"errors"
	"time"

	marketplaceapp "github.com/bidboard/backend/internal/application/marketplace"
)

// Ensure StubDocumentStorage implements DocumentStorage
var _ marketplaceapp.DocumentStorage = (*StubDocumentStorage)(nil)

// StubDocumentStorage is a placeholder storage backend for development
// environments without an S3 endpoint. URLs it hands out do not work.
type StubDocumentStorage struct {
	// BaseURL is the base for generated upload/download URLs
	BaseURL string
}

// NewStubDocumentStorage creates a new StubDocumentStorage
func NewStubDocumentStorage() *StubDocumentStorage {
	return &StubDocumentStorage{
		BaseURL: "https://storage.example.com",
	}
}

// GenerateUploadURL returns a fake presigned upload URL
func (s *StubDocumentStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey, expiresAt, nil
}

// GenerateDownloadURL returns a fake presigned download URL
func (s *StubDocumentStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/download/" + storageKey, expiresAt, nil
}

// DeleteObject is a no-op
func (s *StubDocumentStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// ObjectExists always reports true so the confirmation flow works in development
func (s *StubDocumentStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}
