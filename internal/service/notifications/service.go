package notifications

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// Paging limits for notification history.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Common errors for notification operations.
var (
	ErrInvalidUser    = errors.New("invalid user id")
	ErrEmptyMessage   = errors.New("notification message is empty")
	ErrInvalidType    = errors.New("invalid notification type")
	ErrInvalidPage    = errors.New("page must be positive")
	ErrInvalidPerPage = errors.New("page size must be positive")
)

// Service provides notification persistence.
type Service struct {
	store store.NotificationStore
	now   func() time.Time
}

// New creates a new notification service.
func New(st store.NotificationStore) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateNotification validates and persists a notification.
func (s *Service) CreateNotification(ctx context.Context, n *store.Notification) (*store.Notification, error) {
	if n.UserID <= 0 {
		return nil, ErrInvalidUser
	}
	text := strings.TrimSpace(n.Message)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !n.Type.Valid() {
		return nil, ErrInvalidType
	}

	stored := &store.Notification{
		UserID:          n.UserID,
		Message:         text,
		Type:            n.Type,
		CreatedAt:       s.now(),
		RelatedEntityID: n.RelatedEntityID,
	}
	if err := s.store.SaveNotification(ctx, stored); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return stored, nil
}

// GetUnreadNotifications lists a user's unread notifications, newest first.
func (s *Service) GetUnreadNotifications(ctx context.Context, userID int64) ([]*store.Notification, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	items, err := s.store.ListUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list unread: %w", err)
	}
	return items, nil
}

// MarkAsRead marks a notification as read if userID owns it. The returned
// error wraps store.ErrNotFound otherwise.
func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID int64) (*store.Notification, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	if notificationID <= 0 {
		return nil, fmt.Errorf("notification %d: %w", notificationID, store.ErrNotFound)
	}
	return s.store.MarkRead(ctx, notificationID, userID)
}

// MarkAllAsRead marks every notification of a user as read.
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidUser
	}
	if _, err := s.store.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// GetNotificationHistory returns one page of a user's notifications.
// Pages are 1-based; page sizes above MaxPageSize are clamped. A page past
// the end yields no items.
func (s *Service) GetNotificationHistory(ctx context.Context, userID int64, page, pageSize int) (*store.NotificationPage, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if pageSize < 1 {
		return nil, ErrInvalidPerPage
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	// Pages whose offset does not fit an int lie past any stored row.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}

	items, total, err := s.store.ListNotifications(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return &store.NotificationPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}
