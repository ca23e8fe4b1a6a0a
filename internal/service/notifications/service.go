package notifications

import (
	"context"
	"strconv"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/db"
	"github.com/mityasmirnov/AnyMatch/internal/repository"
)

// Service is the notification side channel. Match detection and super-likes
// push through it; recipients read and acknowledge through it.
type Service struct {
	appCtx    *app.AppContext
	notifRepo *repository.NotificationRepository
}

// NewService creates the notifications service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		notifRepo: repository.NewNotificationRepository(appCtx.DB),
	}
}

// Push writes one notification row for one recipient and bumps the cached
// unread counter. Failures are logged, not returned: delivery is
// fire-and-forget from the caller's point of view, so a failed write never
// aborts the match-detection flow that triggered it.
func (s *Service) Push(ctx context.Context, recipientID uint64, kind, title, message, relatedID string) {
	n := &db.Notification{
		UserID:    recipientID,
		Type:      kind,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		s.appCtx.Logger.Error("notification write failed",
			"recipient", recipientID, "kind", kind, "err", err)
		return
	}

	s.appCtx.Metrics.RecordNotification(kind)
	s.appCtx.RedisCache.BumpCount(ctx, s.appCtx.RedisCache.KeyForUnreadCount(recipientID))
}

// List returns the recipient's notifications, most recent first.
func (s *Service) List(ctx context.Context, userID uint64, paginationToken *string, limit int) ([]db.Notification, *string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notifRepo.ListForUser(ctx, userID, paginationToken, limit)
}

// UnreadCount returns the recipient's unread count.
// Cache-first strategy:
//  1. Attempts to read from Redis (notifications:unread:userID).
//  2. On cache miss, falls back to the DB count.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	key := s.appCtx.RedisCache.KeyForUnreadCount(userID)

	if n, ok, _ := s.appCtx.RedisCache.GetCount(ctx, key); ok {
		return n, nil
	}

	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.appCtx.RedisCache.SetCount(ctx, key, count)
	return count, nil
}

// MarkRead flags a single notification as read and invalidates the counter.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	if err := s.notifRepo.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForUnreadCount(userID))
	return nil
}

// MarkAllRead flags all of the recipient's notifications as read and resets
// the cached counter.
func (s *Service) MarkAllRead(ctx context.Context, userID uint64) error {
	if err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	_ = s.appCtx.RedisCache.SetCount(ctx, s.appCtx.RedisCache.KeyForUnreadCount(userID), 0)
	return nil
}

// FormatUserID renders a user id the way relatedId fields store them.
func FormatUserID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
