package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist or is not
// visible to the requesting user.
var ErrNotFound = errors.New("not found")

// Role defines what a user account may do in the marketplace.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the system.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
}

// Property represents a rental listing.
type Property struct {
	ID          int64
	LandlordID  int64
	Title       string
	Description string
	Address     string
	City        string
	MonthlyRent int64 // cents
	Bedrooms    int
	Available   bool
	CreatedAt   time.Time
}

// PropertyFilter narrows property listings. Zero values mean "any".
type PropertyFilter struct {
	City          string
	MaxRent       int64
	MinBedrooms   int
	AvailableOnly bool
	Limit         int
	Offset        int
}

// Message represents a persisted direct message between two users.
type Message struct {
	ID         int64
	SenderID   int64
	ReceiverID int64
	PropertyID *int64 // listing the conversation is about, if any
	Content    string
	SentAt     time.Time
	IsRead     bool
}

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationTypeNewMessage        NotificationType = "new_message"
	NotificationTypeApplicationUpdate NotificationType = "application_update"
	NotificationTypePropertyUpdate    NotificationType = "property_update"
	NotificationTypeSystem            NotificationType = "system"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeNewMessage, NotificationTypeApplicationUpdate,
		NotificationTypePropertyUpdate, NotificationTypeSystem:
		return true
	}
	return false
}

// Notification represents a persisted user notification.
type Notification struct {
	ID              int64
	UserID          int64
	Message         string
	Type            NotificationType
	CreatedAt       time.Time
	RelatedEntityID *int64
	IsRead          bool
}

// NotificationPage is one page of a user's notification history,
// newest first.
type NotificationPage struct {
	Items      []*Notification
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser inserts a user. PasswordHash must already be hashed.
	CreateUser(ctx context.Context, user *User) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// PropertyStore handles listing persistence.
type PropertyStore interface {
	CreateProperty(ctx context.Context, p *Property) (*Property, error)
	GetProperty(ctx context.Context, id int64) (*Property, error)
	ListProperties(ctx context.Context, filter PropertyFilter) ([]*Property, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID.
	SaveMessage(ctx context.Context, msg *Message) error

	// GetMessage retrieves a message by ID.
	GetMessage(ctx context.Context, id int64) (*Message, error)

	// MarkMessageRead sets the read flag. Returns ErrNotFound for unknown IDs.
	MarkMessageRead(ctx context.Context, id int64) error

	// ListConversation returns messages exchanged between two users, newest
	// first. If beforeID is provided, only messages older than it are returned.
	ListConversation(ctx context.Context, userA, userB int64, limit int, beforeID *int64) ([]*Message, error)
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// SaveNotification persists a notification and sets its ID.
	SaveNotification(ctx context.Context, n *Notification) error

	// ListUnread returns unread notifications for a user, newest first.
	ListUnread(ctx context.Context, userID int64) ([]*Notification, error)

	// MarkRead flips the read flag of a notification owned by userID and
	// returns the updated record. Returns ErrNotFound when the notification
	// does not exist or belongs to someone else.
	MarkRead(ctx context.Context, id, userID int64) (*Notification, error)

	// MarkAllRead flips every unread notification of a user and returns the
	// number of rows changed.
	MarkAllRead(ctx context.Context, userID int64) (int64, error)

	// ListNotifications returns a window of a user's notifications, newest
	// first, together with the total count.
	ListNotifications(ctx context.Context, userID int64, offset, limit int) ([]*Notification, int, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	PropertyStore
	MessageStore
	NotificationStore

	// Close closes the underlying database connection.
	Close() error
}
