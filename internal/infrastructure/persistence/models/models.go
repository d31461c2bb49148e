package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/marketplace"
	"github.com/bidboard/backend/internal/domain/notification"
)

// UserModel is the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string
	CompanyName  string
	Role         string `gorm:"index;not null"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CompanyName:  m.CompanyName,
		Role:         identity.Role(m.Role),
		Active:       m.Active,
	}
}

func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		CompanyName:  u.CompanyName,
		Role:         string(u.Role),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// RfpModel is the GORM model for RFPs
type RfpModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;index;not null"`
	CreatedBy      uuid.UUID  `gorm:"type:uuid;not null"`
	Title          string     `gorm:"not null"`
	Description    string
	TradeCategory  string     `gorm:"index"`
	City           string     `gorm:"index"`
	State          string     `gorm:"index"`
	Status         string     `gorm:"index;not null"`
	BidDeadline    time.Time  `gorm:"index;not null"`
	QADeadline     *time.Time
	SiteVisitAt    *time.Time
	Featured       bool       `gorm:"index;not null;default:false"`
	FeaturedUntil  *time.Time
	AwardedTo      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (RfpModel) TableName() string { return "rfps" }

func (m *RfpModel) ToDomain() *marketplace.Rfp {
	return &marketplace.Rfp{
		BaseEntity:     baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		OrganizationID: m.OrganizationID,
		CreatedBy:      m.CreatedBy,
		Title:          m.Title,
		Description:    m.Description,
		TradeCategory:  m.TradeCategory,
		City:           m.City,
		State:          m.State,
		Status:         marketplace.RfpStatus(m.Status),
		BidDeadline:    m.BidDeadline,
		QADeadline:     m.QADeadline,
		SiteVisitAt:    m.SiteVisitAt,
		Featured:       m.Featured,
		FeaturedUntil:  m.FeaturedUntil,
		AwardedTo:      m.AwardedTo,
	}
}

func RfpModelFromDomain(r *marketplace.Rfp) *RfpModel {
	return &RfpModel{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		CreatedBy:      r.CreatedBy,
		Title:          r.Title,
		Description:    r.Description,
		TradeCategory:  r.TradeCategory,
		City:           r.City,
		State:          r.State,
		Status:         string(r.Status),
		BidDeadline:    r.BidDeadline,
		QADeadline:     r.QADeadline,
		SiteVisitAt:    r.SiteVisitAt,
		Featured:       r.Featured,
		FeaturedUntil:  r.FeaturedUntil,
		AwardedTo:      r.AwardedTo,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// BidRequestModel is the GORM model for bid requests
type BidRequestModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RfpID        uuid.UUID `gorm:"type:uuid;index;not null"`
	ContractorID uuid.UUID `gorm:"type:uuid;index;not null"`
	Message      string
	Status       string `gorm:"index;not null"`
	Answer       string
	AnsweredAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (BidRequestModel) TableName() string { return "bid_requests" }

func (m *BidRequestModel) ToDomain() *marketplace.BidRequest {
	return &marketplace.BidRequest{
		BaseEntity:   baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		RfpID:        m.RfpID,
		ContractorID: m.ContractorID,
		Message:      m.Message,
		Status:       marketplace.BidRequestStatus(m.Status),
		Answer:       m.Answer,
		AnsweredAt:   m.AnsweredAt,
	}
}

func BidRequestModelFromDomain(b *marketplace.BidRequest) *BidRequestModel {
	return &BidRequestModel{
		ID:           b.ID,
		RfpID:        b.RfpID,
		ContractorID: b.ContractorID,
		Message:      b.Message,
		Status:       string(b.Status),
		Answer:       b.Answer,
		AnsweredAt:   b.AnsweredAt,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

// DocumentModel is the GORM model for RFP documents
type DocumentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RfpID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind        string    `gorm:"not null"`
	FileName    string    `gorm:"not null"`
	ContentType string    `gorm:"not null"`
	FileSize    int64     `gorm:"not null"`
	StorageKey  string    `gorm:"uniqueIndex;not null"`
	Status      string    `gorm:"index;not null"`
	UploadedBy  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DocumentModel) TableName() string { return "documents" }

func (m *DocumentModel) ToDomain() *marketplace.Document {
	return &marketplace.Document{
		BaseEntity:  baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		RfpID:       m.RfpID,
		Kind:        marketplace.DocumentKind(m.Kind),
		FileName:    m.FileName,
		ContentType: m.ContentType,
		FileSize:    m.FileSize,
		StorageKey:  m.StorageKey,
		Status:      marketplace.DocumentStatus(m.Status),
		UploadedBy:  m.UploadedBy,
	}
}

func DocumentModelFromDomain(d *marketplace.Document) *DocumentModel {
	return &DocumentModel{
		ID:          d.ID,
		RfpID:       d.RfpID,
		Kind:        string(d.Kind),
		FileName:    d.FileName,
		ContentType: d.ContentType,
		FileSize:    d.FileSize,
		StorageKey:  d.StorageKey,
		Status:      string(d.Status),
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// FeaturedListingModel is the GORM model for featured listing purchases
type FeaturedListingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RfpID           uuid.UUID       `gorm:"type:uuid;index;not null"`
	OrganizationID  uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency        string          `gorm:"not null"`
	DurationSeconds int64           `gorm:"not null"`
	StripeSessionID string          `gorm:"index"`
	Status          string          `gorm:"index;not null"`
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (FeaturedListingModel) TableName() string { return "featured_listings" }

func (m *FeaturedListingModel) ToDomain() *marketplace.FeaturedListing {
	return &marketplace.FeaturedListing{
		BaseEntity:      baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		RfpID:           m.RfpID,
		OrganizationID:  m.OrganizationID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Duration:        time.Duration(m.DurationSeconds) * time.Second,
		StripeSessionID: m.StripeSessionID,
		Status:          marketplace.FeaturedListingStatus(m.Status),
		PaidAt:          m.PaidAt,
	}
}

func FeaturedListingModelFromDomain(f *marketplace.FeaturedListing) *FeaturedListingModel {
	return &FeaturedListingModel{
		ID:              f.ID,
		RfpID:           f.RfpID,
		OrganizationID:  f.OrganizationID,
		Amount:          f.Amount,
		Currency:        f.Currency,
		DurationSeconds: int64(f.Duration / time.Second),
		StripeSessionID: f.StripeSessionID,
		Status:          string(f.Status),
		PaidAt:          f.PaidAt,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// NotificationModel is the GORM model for notifications
type NotificationModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;index;not null"`
	RfpID     *uuid.UUID `gorm:"type:uuid;index"`
	Type      string     `gorm:"index;not null"`
	Title     string     `gorm:"not null"`
	Body      string
	Read      bool `gorm:"index;not null;default:false"`
	ReadAt    *time.Time
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (NotificationModel) TableName() string { return "notifications" }

func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity: baseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		UserID:     m.UserID,
		RfpID:      m.RfpID,
		Type:       notification.Type(m.Type),
		Title:      m.Title,
		Body:       m.Body,
		Read:       m.Read,
		ReadAt:     m.ReadAt,
	}
}

func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		RfpID:     n.RfpID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}
