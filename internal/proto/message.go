// Package proto defines the JSON frames exchanged over the realtime
// channels and the payloads shared with the REST API.
package proto

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeSendMessage            = "SendMessage"
	InboundTypeMarkMessageAsRead      = "MarkMessageAsRead"
	InboundTypeGetUnreadNotifications = "GetUnreadNotifications"
	InboundTypeMarkAsRead             = "MarkAsRead"
	InboundTypeMarkAllAsRead          = "MarkAllAsRead"
	InboundTypeGetNotificationHistory = "GetNotificationHistory"
	InboundTypePing                   = "ping"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// SendMessageData asks the server to deliver a direct message.
// A sender id, if present, is ignored.
type SendMessageData struct {
	ReceiverID int64  `json:"receiverId"`
	PropertyID *int64 `json:"propertyId,omitempty"`
	Content    string `json:"content"`
}

// MessageIDData references a stored message.
type MessageIDData struct {
	MessageID int64 `json:"messageId"`
}

// NotificationIDData references a stored notification.
type NotificationIDData struct {
	NotificationID int64 `json:"notificationId"`
}

// HistoryData selects a page of notification history. Zero values fall back
// to server defaults.
type HistoryData struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Message is the wire form of a direct message.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"senderId"`
	ReceiverID int64     `json:"receiverId"`
	PropertyID *int64    `json:"propertyId,omitempty"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sentAt"`
	IsRead     bool      `json:"isRead"`
}

// Notification is the wire form of a user notification.
type Notification struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	Message         string    `json:"message"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"createdAt"`
	RelatedEntityID *int64    `json:"relatedEntityId,omitempty"`
	IsRead          bool      `json:"isRead"`
}

// NotificationPage is one page of notification history.
type NotificationPage struct {
	Items      []Notification `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalCount int            `json:"totalCount"`
	TotalPages int            `json:"totalPages"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// FromMessage converts a stored message.
func FromMessage(m *store.Message) Message {
	return Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		PropertyID: m.PropertyID,
		Content:    m.Content,
		SentAt:     m.SentAt,
		IsRead:     m.IsRead,
	}
}

// FromNotification converts a stored notification.
func FromNotification(n *store.Notification) Notification {
	return Notification{
		ID:              n.ID,
		UserID:          n.UserID,
		Message:         n.Message,
		Type:            string(n.Type),
		CreatedAt:       n.CreatedAt,
		RelatedEntityID: n.RelatedEntityID,
		IsRead:          n.IsRead,
	}
}

// FromNotifications converts a list, never returning nil so that an empty
// list encodes as [].
func FromNotifications(list []*store.Notification) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, FromNotification(n))
	}
	return out
}

// FromNotificationPage converts a stored page without altering its paging.
func FromNotificationPage(p *store.NotificationPage) NotificationPage {
	return NotificationPage{
		Items:      FromNotifications(p.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}
