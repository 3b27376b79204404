package core

import (
	"context"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// MessageService abstracts message persistence for the chat channel.
type MessageService interface {
	// SendMessage persists a message and returns the stored copy with its
	// ID and timestamp assigned.
	SendMessage(ctx context.Context, msg *store.Message) (*store.Message, error)

	// MarkMessageAsRead flips the read flag of a message.
	MarkMessageAsRead(ctx context.Context, messageID int64) error

	// GetMessage retrieves a stored message.
	GetMessage(ctx context.Context, messageID int64) (*store.Message, error)
}

// NotificationService abstracts notification persistence.
type NotificationService interface {
	// CreateNotification persists a notification and returns the stored copy.
	CreateNotification(ctx context.Context, n *store.Notification) (*store.Notification, error)

	// GetUnreadNotifications lists a user's unread notifications.
	GetUnreadNotifications(ctx context.Context, userID int64) ([]*store.Notification, error)

	// MarkAsRead marks a notification owned by userID as read.
	// Returns an error wrapping store.ErrNotFound when the notification is
	// missing or owned by someone else.
	MarkAsRead(ctx context.Context, notificationID, userID int64) (*store.Notification, error)

	// MarkAllAsRead marks every notification of a user as read.
	MarkAllAsRead(ctx context.Context, userID int64) error

	// GetNotificationHistory returns one page of a user's notifications.
	GetNotificationHistory(ctx context.Context, userID int64, page, pageSize int) (*store.NotificationPage, error)
}

// UserDirectory resolves user profiles.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
}
