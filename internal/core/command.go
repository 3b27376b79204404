package core

import "github.com/vovakirdan/rentline-server/internal/store"

// CommandKind describes which channel operation the client invoked.
type CommandKind int

const (
	// CommandSendMessage persists a chat message and delivers it to the receiver.
	CommandSendMessage CommandKind = iota
	// CommandMarkMessageAsRead flips a message's read flag.
	CommandMarkMessageAsRead
	// CommandGetUnreadNotifications fetches the caller's unread notifications.
	CommandGetUnreadNotifications
	// CommandMarkNotificationAsRead marks one of the caller's notifications as read.
	CommandMarkNotificationAsRead
	// CommandMarkAllNotificationsAsRead marks every notification of the caller as read.
	CommandMarkAllNotificationsAsRead
	// CommandGetNotificationHistory fetches one page of the caller's notifications.
	CommandGetNotificationHistory
	// CommandPing is a keepalive answered with a pong.
	CommandPing
)

var commandNames = [...]string{
	CommandSendMessage:                "SendMessage",
	CommandMarkMessageAsRead:          "MarkMessageAsRead",
	CommandGetUnreadNotifications:     "GetUnreadNotifications",
	CommandMarkNotificationAsRead:     "MarkAsRead",
	CommandMarkAllNotificationsAsRead: "MarkAllAsRead",
	CommandGetNotificationHistory:     "GetNotificationHistory",
	CommandPing:                       "ping",
}

// String returns the wire method name of the command.
func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(commandNames) {
		return commandNames[k]
	}
	return "unknown"
}

// Command represents an operation requested by a client.
type Command struct {
	Kind           CommandKind
	Message        store.Message
	MessageID      int64
	NotificationID int64
	Page           int
	PageSize       int
}
