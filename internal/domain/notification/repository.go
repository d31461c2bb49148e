package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for notifications
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	// ExistsRecent reports whether a notification of the same type for the
	// same user and RFP was created after the given cutoff. The deadline
	// sweep uses this to suppress duplicate reminders.
	ExistsRecent(ctx context.Context, userID, rfpID uuid.UUID, notifType Type, since time.Time) (bool, error)
	Save(ctx context.Context, n *Notification) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}
