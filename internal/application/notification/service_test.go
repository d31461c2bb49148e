package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bidboard/backend/internal/domain/identity"
	"github.com/bidboard/backend/internal/domain/notification"
	"github.com/bidboard/backend/internal/domain/shared"
	"github.com/bidboard/backend/internal/realtime"
)

type stubUserRepo struct {
	users map[uuid.UUID]*identity.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}
func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return nil, shared.ErrNotFound
}
func (s *stubUserRepo) Save(ctx context.Context, user *identity.User) error { return nil }

type capturedFrame struct {
	UserID uuid.UUID
	Frame  realtime.Frame
}

type stubPublisher struct {
	frames []capturedFrame
}

func (s *stubPublisher) Publish(userID uuid.UUID, frame realtime.Frame) {
	s.frames = append(s.frames, capturedFrame{UserID: userID, Frame: frame})
}

type sentEmail struct {
	To      string
	Subject string
}

type stubEmailSender struct {
	emails []sentEmail
}

func (s *stubEmailSender) SendReminder(ctx context.Context, toEmail, toName, subject, body string) error {
	s.emails = append(s.emails, sentEmail{To: toEmail, Subject: subject})
	return nil
}

func newServiceUnderTest(t *testing.T) (*Service, *storingRepo, *stubPublisher, *stubEmailSender, *identity.User) {
	t.Helper()
	user, err := identity.NewUser("estimator@ridgeline.build", "hash", "Riley", "Ridgeline Builders", identity.RoleContractor)
	require.NoError(t, err)

	store := &storingRepo{}
	publisher := &stubPublisher{}
	email := &stubEmailSender{}
	userRepo := &stubUserRepo{users: map[uuid.UUID]*identity.User{user.ID: user}}
	return NewService(store, userRepo, publisher, email, nil), store, publisher, email, user
}

// storingRepo is an in-memory notification.Repository
type storingRepo struct {
	saved []*notification.Notification
}

func (s *storingRepo) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	for _, n := range s.saved {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, shared.ErrNotFound
}
func (s *storingRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*notification.Notification, error) {
	var out []*notification.Notification
	for _, n := range s.saved {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return out, nil
}
func (s *storingRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range s.saved {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}
func (s *storingRepo) ExistsRecent(ctx context.Context, userID, rfpID uuid.UUID, notifType notification.Type, since time.Time) (bool, error) {
	return false, nil
}
func (s *storingRepo) Save(ctx context.Context, n *notification.Notification) error {
	for i, existing := range s.saved {
		if existing.ID == n.ID {
			s.saved[i] = n
			return nil
		}
	}
	s.saved = append(s.saved, n)
	return nil
}
func (s *storingRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	for _, n := range s.saved {
		if n.UserID == userID {
			n.MarkRead()
		}
	}
	return nil
}

func TestServiceNotify(t *testing.T) {
	t.Run("stores and pushes a realtime frame", func(t *testing.T) {
		svc, store, publisher, email, user := newServiceUnderTest(t)
		rfpID := uuid.New()

		err := svc.Notify(context.Background(), user.ID, &rfpID, notification.TypeBidReceived, "New bid request", "")

		require.NoError(t, err)
		require.Len(t, store.saved, 1)
		require.Len(t, publisher.frames, 1)
		assert.Equal(t, user.ID, publisher.frames[0].UserID)
		assert.Equal(t, realtime.FrameNotification, publisher.frames[0].Frame.Type)
		assert.Equal(t, "/api/notifications", publisher.frames[0].Frame.Resource)

		var dto NotificationDTO
		require.NoError(t, json.Unmarshal(publisher.frames[0].Frame.Payload, &dto))
		assert.Equal(t, "New bid request", dto.Title)
		assert.Empty(t, email.emails, "bid activity does not go out by email")
	})

	t.Run("deadline reminders also go out by email", func(t *testing.T) {
		svc, _, _, email, user := newServiceUnderTest(t)
		rfpID := uuid.New()

		err := svc.Notify(context.Background(), user.ID, &rfpID, notification.TypeDeadline24h, "Bids due in 24 hours", "")

		require.NoError(t, err)
		require.Len(t, email.emails, 1)
		assert.Equal(t, "estimator@ridgeline.build", email.emails[0].To)
		assert.Equal(t, "Bids due in 24 hours", email.emails[0].Subject)
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		svc, store, _, _, user := newServiceUnderTest(t)

		err := svc.Notify(context.Background(), user.ID, nil, notification.Type("spam"), "hi", "")

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Empty(t, store.saved)
	})
}

func TestServiceMarkRead(t *testing.T) {
	repo := &storingRepo{}
	svc := NewService(repo, &stubUserRepo{}, nil, nil, nil)
	ctx := context.Background()
	owner := uuid.New()

	n, err := notification.New(owner, nil, notification.TypeBidReceived, "New bid request", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, n))

	t.Run("owner can mark read", func(t *testing.T) {
		require.NoError(t, svc.MarkRead(ctx, owner, n.ID))

		count, err := svc.UnreadCount(ctx, owner)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})

	t.Run("someone else cannot", func(t *testing.T) {
		assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New(), n.ID), shared.ErrForbidden)
	})

	t.Run("missing notification", func(t *testing.T) {
		assert.ErrorIs(t, svc.MarkRead(ctx, owner, uuid.New()), shared.ErrNotFound)
	})
}
