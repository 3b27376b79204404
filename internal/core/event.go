package core

import "github.com/vovakirdan/rentline-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventReceiveMessage delivers a stored chat message to the receiver.
	EventReceiveMessage EventKind = iota
	// EventReceiveNotification delivers a stored notification to its owner.
	EventReceiveNotification
	// EventMessageRead announces that a message was marked as read.
	EventMessageRead
	// EventUnreadNotifications answers GetUnreadNotifications.
	EventUnreadNotifications
	// EventNotificationRead confirms MarkAsRead.
	EventNotificationRead
	// EventAllNotificationsRead confirms MarkAllAsRead.
	EventAllNotificationsRead
	// EventNotificationHistory answers GetNotificationHistory.
	EventNotificationHistory
	// EventPong answers a ping.
	EventPong
	// EventError notifies the caller about a failed operation.
	EventError
)

var eventNames = [...]string{
	EventReceiveMessage:       "ReceiveMessage",
	EventReceiveNotification:  "ReceiveNotification",
	EventMessageRead:          "MessageRead",
	EventUnreadNotifications:  "UnreadNotifications",
	EventNotificationRead:     "NotificationRead",
	EventAllNotificationsRead: "AllNotificationsRead",
	EventNotificationHistory:  "NotificationHistory",
	EventPong:                 "pong",
	EventError:                "error",
}

// String returns the wire name of the event. The names are part of the
// client contract.
func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is sent to clients to describe what happened in the system.
// A single Event may be shared by many clients and must not be mutated
// after it has been sent.
type Event struct {
	Kind           EventKind
	Message        *store.Message
	Notification   *store.Notification
	Notifications  []*store.Notification
	Page           *store.NotificationPage
	MessageID      int64
	NotificationID int64
	Error          *CoreError
}
