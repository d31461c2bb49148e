package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/bidboard/backend/internal/realtime"
)

// RealtimePublisher pushes frames to a user's open sockets
type RealtimePublisher interface {
	Publish(userID uuid.UUID, frame realtime.Frame)
}

// EmailSender delivers deadline reminder emails
type EmailSender interface {
	SendReminder(ctx context.Context, toEmail, toName, subject, body string) error
}

// NotificationDTO is the API shape of a notification
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	RfpID     *uuid.UUID `json:"rfp_id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
}

func toDTO(n *notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		RfpID:     n.RfpID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// Service creates and delivers notifications. Every notification lands in
// the store; realtime push and email are best effort on top.
type Service struct {
	notifRepo notification.Repository
	userRepo  identity.Repository
	publisher RealtimePublisher
	email     EmailSender
	logger    *zap.Logger
}

// NewService creates a notification service. publisher and email may be nil.
func NewService(
	notifRepo notification.Repository,
	userRepo identity.Repository,
	publisher RealtimePublisher,
	email EmailSender,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		publisher: publisher,
		email:     email,
		logger:    logger,
	}
}

// Notify stores a notification and fans it out over the realtime channel.
// Deadline reminders additionally go out by email when a sender is wired.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, rfpID *uuid.UUID, notifType notification.Type, title, body string) error {
	n, err := notification.New(userID, rfpID, notifType, title, body)
	if err != nil {
		return err
	}
	if err := s.notifRepo.Save(ctx, n); err != nil {
		return err
	}

	if s.publisher != nil {
		payload, err := json.Marshal(toDTO(n))
		if err == nil {
			s.publisher.Publish(userID, realtime.Frame{
				Type:     realtime.FrameNotification,
				Resource: "/api/notifications",
				Payload:  payload,
			})
		}
	}

	if s.email != nil && notifType.IsDeadlineReminder() {
		if err := s.sendEmail(ctx, userID, title, body); err != nil {
			// email is best effort, the stored notification is the record
			s.logger.Warn("failed to send reminder email",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) sendEmail(ctx context.Context, userID uuid.UUID, subject, body string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.email.SendReminder(ctx, user.Email, user.Name, subject, body)
}

// ListForUser returns a user's notifications
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]NotificationDTO, error) {
	notifications, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toDTO(n)
	}
	return dtos, nil
}

// UnreadCount returns the number of unread notifications for a user
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// MarkRead marks one notification read. Users can only touch their own.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.notifRepo.FindByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return shared.ErrForbidden
	}
	n.MarkRead()
	return s.notifRepo.Save(ctx, n)
}

// MarkAllRead marks every unread notification of a user as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllRead(ctx, userID)
}
