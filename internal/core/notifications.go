package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// History defaults applied when the caller omits page or page size.
const (
	DefaultHistoryPage     = 1
	DefaultHistoryPageSize = 20
)

// NotificationChannel serves a user's own notifications. Every result is
// sent back to the calling connection only.
type NotificationChannel struct {
	membership
	notifications NotificationService
}

// NewNotificationChannel builds the notification channel.
func NewNotificationChannel(registry *Registry, notifications NotificationService, logger *zerolog.Logger) *NotificationChannel {
	return &NotificationChannel{
		membership:    membership{name: ChannelNotifications, registry: registry, log: logger},
		notifications: notifications,
	}
}

// Handle executes one notification command.
func (ch *NotificationChannel) Handle(ctx context.Context, c *Client, cmd *Command) error {
	switch cmd.Kind {
	case CommandGetUnreadNotifications:
		return ch.GetUnreadNotifications(ctx, c)
	case CommandMarkNotificationAsRead:
		return ch.MarkAsRead(ctx, c, cmd.NotificationID)
	case CommandMarkAllNotificationsAsRead:
		return ch.MarkAllAsRead(ctx, c)
	case CommandGetNotificationHistory:
		return ch.GetNotificationHistory(ctx, c, cmd.Page, cmd.PageSize)
	case CommandPing:
		ch.pong(c)
		return nil
	default:
		return fmt.Errorf("%w: %s on %s channel", ErrUnknownCommand, cmd.Kind, ch.name)
	}
}

func (ch *NotificationChannel) fail(c *Client, op string, err error) error {
	ch.log.Error().Err(err).
		Str("client_id", c.ID).
		Int64("user_id", c.Identity.UserID).
		Str("method", op).
		Msg("notification operation failed")
	return fmt.Errorf("%s: %w", op, err)
}

// GetUnreadNotifications sends the caller's unread notifications.
func (ch *NotificationChannel) GetUnreadNotifications(ctx context.Context, c *Client) error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}

	items, err := ch.notifications.GetUnreadNotifications(ctx, c.Identity.UserID)
	if err != nil {
		return ch.fail(c, "get unread notifications", err)
	}
	c.Send(&Event{Kind: EventUnreadNotifications, Notifications: items})
	return nil
}

// MarkAsRead marks one notification as read. A notification that does not
// exist or belongs to someone else is silently ignored.
func (ch *NotificationChannel) MarkAsRead(ctx context.Context, c *Client, notificationID int64) error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}

	n, err := ch.notifications.MarkAsRead(ctx, notificationID, c.Identity.UserID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && n == nil) {
		ch.log.Debug().
			Int64("notification_id", notificationID).
			Int64("user_id", c.Identity.UserID).
			Msg("mark as read ignored")
		return nil
	}
	if err != nil {
		return ch.fail(c, "mark notification as read", err)
	}
	c.Send(&Event{Kind: EventNotificationRead, NotificationID: notificationID})
	return nil
}

// MarkAllAsRead marks every notification of the caller as read.
func (ch *NotificationChannel) MarkAllAsRead(ctx context.Context, c *Client) error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}

	if err := ch.notifications.MarkAllAsRead(ctx, c.Identity.UserID); err != nil {
		return ch.fail(c, "mark all notifications as read", err)
	}
	c.Send(&Event{Kind: EventAllNotificationsRead})
	return nil
}

// GetNotificationHistory sends one page of the caller's notifications.
// Zero arguments take the defaults; anything else is passed through as is.
func (ch *NotificationChannel) GetNotificationHistory(ctx context.Context, c *Client, page, pageSize int) error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}
	if page == 0 {
		page = DefaultHistoryPage
	}
	if pageSize == 0 {
		pageSize = DefaultHistoryPageSize
	}

	result, err := ch.notifications.GetNotificationHistory(ctx, c.Identity.UserID, page, pageSize)
	if err != nil {
		return ch.fail(c, "get notification history", err)
	}
	c.Send(&Event{Kind: EventNotificationHistory, Page: result})
	return nil
}
