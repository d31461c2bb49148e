package marketplace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
)

// In-memory repositories shared by the service tests.

type memRfpRepo struct {
	rfps map[uuid.UUID]*marketplace.Rfp
}

func newMemRfpRepo() *memRfpRepo {
	return &memRfpRepo{rfps: make(map[uuid.UUID]*marketplace.Rfp)}
}

func (r *memRfpRepo) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Rfp, error) {
	rfp, ok := r.rfps[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rfp, nil
}

func (r *memRfpRepo) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*marketplace.Rfp, error) {
	var out []*marketplace.Rfp
	for _, rfp := range r.rfps {
		if rfp.OrganizationID == organizationID {
			out = append(out, rfp)
		}
	}
	return out, nil
}

func (r *memRfpRepo) Search(ctx context.Context, filter marketplace.RfpFilter) ([]*marketplace.Rfp, int64, error) {
	var out []*marketplace.Rfp
	for _, rfp := range r.rfps {
		if filter.Status != "" && rfp.Status != filter.Status {
			continue
		}
		if filter.TradeCategory != "" && rfp.TradeCategory != filter.TradeCategory {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(rfp.Title), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, rfp)
	}
	return out, int64(len(out)), nil
}

func (r *memRfpRepo) FindOpenWithDeadlineBefore(ctx context.Context, until time.Time) ([]*marketplace.Rfp, error) {
	return nil, nil
}

func (r *memRfpRepo) Save(ctx context.Context, rfp *marketplace.Rfp) error {
	r.rfps[rfp.ID] = rfp
	return nil
}

func (r *memRfpRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.rfps, id)
	return nil
}

type memBidRepo struct {
	requests map[uuid.UUID]*marketplace.BidRequest
}

func newMemBidRepo() *memBidRepo {
	return &memBidRepo{requests: make(map[uuid.UUID]*marketplace.BidRequest)}
}

func (r *memBidRepo) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.BidRequest, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return request, nil
}

func (r *memBidRepo) FindByRfp(ctx context.Context, rfpID uuid.UUID) ([]*marketplace.BidRequest, error) {
	var out []*marketplace.BidRequest
	for _, request := range r.requests {
		if request.RfpID == rfpID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (r *memBidRepo) FindByContractor(ctx context.Context, contractorID uuid.UUID) ([]*marketplace.BidRequest, error) {
	var out []*marketplace.BidRequest
	for _, request := range r.requests {
		if request.ContractorID == contractorID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (r *memBidRepo) FindByRfpAndContractor(ctx context.Context, rfpID, contractorID uuid.UUID) (*marketplace.BidRequest, error) {
	for _, request := range r.requests {
		if request.RfpID == rfpID && request.ContractorID == contractorID {
			return request, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBidRepo) CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error) {
	var count int64
	for _, request := range r.requests {
		if request.RfpID == rfpID {
			count++
		}
	}
	return count, nil
}

func (r *memBidRepo) Save(ctx context.Context, request *marketplace.BidRequest) error {
	r.requests[request.ID] = request
	return nil
}

type memDocRepo struct {
	documents map[uuid.UUID]*marketplace.Document
}

func newMemDocRepo() *memDocRepo {
	return &memDocRepo{documents: make(map[uuid.UUID]*marketplace.Document)}
}

func (r *memDocRepo) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.Document, error) {
	document, ok := r.documents[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return document, nil
}

func (r *memDocRepo) FindActiveByRfp(ctx context.Context, rfpID uuid.UUID) ([]*marketplace.Document, error) {
	var out []*marketplace.Document
	for _, document := range r.documents {
		if document.RfpID == rfpID && document.Status == marketplace.DocumentStatusActive {
			out = append(out, document)
		}
	}
	return out, nil
}

func (r *memDocRepo) CountByRfp(ctx context.Context, rfpID uuid.UUID) (int64, error) {
	var count int64
	for _, document := range r.documents {
		if document.RfpID == rfpID {
			count++
		}
	}
	return count, nil
}

func (r *memDocRepo) Save(ctx context.Context, document *marketplace.Document) error {
	r.documents[document.ID] = document
	return nil
}

func (r *memDocRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.documents, id)
	return nil
}

type memListingRepo struct {
	listings map[uuid.UUID]*marketplace.FeaturedListing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[uuid.UUID]*marketplace.FeaturedListing)}
}

func (r *memListingRepo) FindByID(ctx context.Context, id uuid.UUID) (*marketplace.FeaturedListing, error) {
	listing, ok := r.listings[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return listing, nil
}

func (r *memListingRepo) FindByCheckoutSession(ctx context.Context, sessionID string) (*marketplace.FeaturedListing, error) {
	for _, listing := range r.listings {
		if listing.StripeSessionID == sessionID {
			return listing, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memListingRepo) Save(ctx context.Context, listing *marketplace.FeaturedListing) error {
	r.listings[listing.ID] = listing
	return nil
}

type memUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func newMemUserRepo(users ...*identity.User) *memUserRepo {
	repo := &memUserRepo{users: make(map[uuid.UUID]*identity.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memUserRepo) Save(ctx context.Context, user *identity.User) error {
	r.users[user.ID] = user
	return nil
}

type sentNotification struct {
	UserID uuid.UUID
	RfpID  *uuid.UUID
	Type   notification.Type
	Title  string
	Body   string
}

type captureNotifier struct {
	sent []sentNotification
}

func (c *captureNotifier) Notify(ctx context.Context, userID uuid.UUID, rfpID *uuid.UUID, notifType notification.Type, title, body string) error {
	c.sent = append(c.sent, sentNotification{UserID: userID, RfpID: rfpID, Type: notifType, Title: title, Body: body})
	return nil
}
