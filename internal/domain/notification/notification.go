package notification

import (
	"time"

	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Type identifies the kind of notification delivered to a user
type Type string

const (
	TypeDeadline24h   Type = "deadline_24h"
	TypeDeadline72h   Type = "deadline_72h"
	TypeDeadline7d    Type = "deadline_7d"
	TypeQADeadline24h Type = "qa_deadline_24h"
	TypeSiteVisit24h  Type = "site_visit_24h"
	TypeBidReceived   Type = "bid_received"
	TypeBidAnswered   Type = "bid_answered"
	TypeRfpAwarded    Type = "rfp_awarded"
)

// deadlineTypes are the reminder notifications that also go out by email
var deadlineTypes = map[Type]bool{
	TypeDeadline24h:   true,
	TypeDeadline72h:   true,
	TypeDeadline7d:    true,
	TypeQADeadline24h: true,
	TypeSiteVisit24h:  true,
}

// IsDeadlineReminder reports whether the type is produced by the deadline sweep
func (t Type) IsDeadlineReminder() bool {
	return deadlineTypes[t]
}

// Valid reports whether the type is one of the known notification kinds
func (t Type) Valid() bool {
	switch t {
	case TypeDeadline24h, TypeDeadline72h, TypeDeadline7d,
		TypeQADeadline24h, TypeSiteVisit24h,
		TypeBidReceived, TypeBidAnswered, TypeRfpAwarded:
		return true
	}
	return false
}

// Notification represents an in-app message for a single user
type Notification struct {
	shared.BaseEntity
	UserID uuid.UUID
	RfpID  *uuid.UUID
	Type   Type
	Title  string
	Body   string
	Read   bool
	ReadAt *time.Time
}

// New creates an unread notification for a user
func New(userID uuid.UUID, rfpID *uuid.UUID, notifType Type, title, body string) (*Notification, error) {
	if title == "" || !notifType.Valid() {
		return nil, shared.ErrInvalidInput
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		RfpID:      rfpID,
		Type:       notifType,
		Title:      title,
		Body:       body,
	}, nil
}

// MarkRead marks the notification as read. Marking twice is a no-op.
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	n.TouchAt(now)
}
