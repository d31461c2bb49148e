package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/shared"
)

// fakeStorage tracks which keys "exist" and the URLs it handed out
type fakeStorage struct {
	objects   map[string]bool
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]bool)}
}

func (f *fakeStorage) GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	if f.uploadErr != nil {
		return "", time.Time{}, f.uploadErr
	}
	return "https://storage.test/upload/" + storageKey, time.Now().Add(expiresIn), nil
}

func (f *fakeStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://storage.test/download/" + storageKey, time.Now().Add(expiresIn), nil
}

func (f *fakeStorage) DeleteObject(ctx context.Context, storageKey string) error {
	delete(f.objects, storageKey)
	return nil
}

func (f *fakeStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	return f.objects[storageKey], nil
}

func pdfUpload() InitiateUploadInput {
	return InitiateUploadInput{
		Kind:        "plan_set",
		FileName:    "roof-plans.pdf",
		ContentType: "application/pdf",
		FileSize:    4 << 20,
	}
}

func newDocumentFixture(t *testing.T) (*DocumentService, *memDocRepo, *fakeStorage, RfpDTO, *identity.User, *identity.User) {
	t.Helper()
	org := newOrgUser(t)
	contractor := newContractorUser(t)
	rfpRepo := newMemRfpRepo()
	docRepo := newMemDocRepo()
	storage := newFakeStorage()
	rfps := NewRfpService(rfpRepo, newMemBidRepo(), docRepo, newMemUserRepo(org, contractor), nil, nil, nil)
	svc := NewDocumentService(docRepo, rfpRepo, storage, nil)

	dto, err := rfps.Create(context.Background(), org.ID, validRfpInput())
	require.NoError(t, err)
	return svc, docRepo, storage, *dto, org, contractor
}

func TestDocumentServiceInitiateUpload(t *testing.T) {
	t.Run("poster gets a presigned upload URL", func(t *testing.T) {
		svc, docRepo, _, rfp, org, _ := newDocumentFixture(t)

		ticket, err := svc.InitiateUpload(context.Background(), org.ID, rfp.ID, pdfUpload())

		require.NoError(t, err)
		assert.Contains(t, ticket.UploadURL, "https://storage.test/upload/rfps/"+rfp.ID.String())
		assert.True(t, ticket.ExpiresAt.After(time.Now()))

		document, err := docRepo.FindByID(context.Background(), ticket.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, "pending", string(document.Status))
	})

	t.Run("only the poster may attach documents", func(t *testing.T) {
		svc, _, _, rfp, _, contractor := newDocumentFixture(t)

		_, err := svc.InitiateUpload(context.Background(), contractor.ID, rfp.ID, pdfUpload())

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("executables are rejected", func(t *testing.T) {
		svc, _, _, rfp, org, _ := newDocumentFixture(t)

		input := pdfUpload()
		input.ContentType = "application/x-msdownload"
		_, err := svc.InitiateUpload(context.Background(), org.ID, rfp.ID, input)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DISALLOWED_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("pending record is dropped when the URL cannot be signed", func(t *testing.T) {
		svc, docRepo, storage, rfp, org, _ := newDocumentFixture(t)
		storage.uploadErr = errors.New("s3 down")

		_, err := svc.InitiateUpload(context.Background(), org.ID, rfp.ID, pdfUpload())

		require.Error(t, err)
		count, err := docRepo.CountByRfp(context.Background(), rfp.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})
}

func TestDocumentServiceConfirmUpload(t *testing.T) {
	svc, docRepo, storage, rfp, org, _ := newDocumentFixture(t)
	ctx := context.Background()

	ticket, err := svc.InitiateUpload(ctx, org.ID, rfp.ID, pdfUpload())
	require.NoError(t, err)

	t.Run("confirming before the upload fails", func(t *testing.T) {
		_, err := svc.ConfirmUpload(ctx, org.ID, ticket.DocumentID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UPLOAD_NOT_FOUND", domainErr.Code)
	})

	t.Run("confirming after the upload activates the document", func(t *testing.T) {
		document, err := docRepo.FindByID(ctx, ticket.DocumentID)
		require.NoError(t, err)
		storage.objects[document.StorageKey] = true

		dto, err := svc.ConfirmUpload(ctx, org.ID, ticket.DocumentID)

		require.NoError(t, err)
		assert.Equal(t, "active", dto.Status)
		assert.Contains(t, dto.URL, "https://storage.test/download/")

		listed, err := svc.ListForRfp(ctx, rfp.ID)
		require.NoError(t, err)
		assert.Len(t, listed, 1)
	})
}

func TestDocumentServiceDelete(t *testing.T) {
	svc, docRepo, storage, rfp, org, contractor := newDocumentFixture(t)
	ctx := context.Background()

	ticket, err := svc.InitiateUpload(ctx, org.ID, rfp.ID, pdfUpload())
	require.NoError(t, err)
	document, err := docRepo.FindByID(ctx, ticket.DocumentID)
	require.NoError(t, err)
	storage.objects[document.StorageKey] = true
	_, err = svc.ConfirmUpload(ctx, org.ID, ticket.DocumentID)
	require.NoError(t, err)

	t.Run("strangers cannot delete", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, contractor.ID, ticket.DocumentID), shared.ErrForbidden)
	})

	t.Run("uploader deletes record and object", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, org.ID, ticket.DocumentID))

		_, err := docRepo.FindByID(ctx, ticket.DocumentID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.False(t, storage.objects[document.StorageKey])
	})
}
