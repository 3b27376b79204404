package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// MaxContentLength is the longest message body accepted, in runes.
const MaxContentLength = 4000

// DefaultConversationLimit is used when a caller asks for no specific page size.
const DefaultConversationLimit = 50

// Common errors for message operations.
var (
	ErrEmptyContent      = errors.New("message content is empty")
	ErrContentTooLong    = errors.New("message content is too long")
	ErrCannotMessageSelf = errors.New("cannot send a message to yourself")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrPropertyNotFound  = errors.New("property not found")
	ErrInvalidMessageID  = errors.New("invalid message id")
)

// Store is the persistence the message service needs.
type Store interface {
	store.MessageStore
	GetUserByID(ctx context.Context, id int64) (*store.User, error)
	GetProperty(ctx context.Context, id int64) (*store.Property, error)
}

// Service provides message persistence and validation.
type Service struct {
	store Store
	now   func() time.Time
}

// New creates a new message service.
func New(st Store) *Service {
	return &Service{
		store: st,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage validates and persists a message, assigning its ID and timestamp.
func (s *Service) SendMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	if msg.SenderID == msg.ReceiverID {
		return nil, ErrCannotMessageSelf
	}

	if _, err := s.store.GetUserByID(ctx, msg.ReceiverID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("lookup recipient: %w", err)
	}
	if msg.PropertyID != nil {
		if _, err := s.store.GetProperty(ctx, *msg.PropertyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrPropertyNotFound
			}
			return nil, fmt.Errorf("lookup property: %w", err)
		}
	}

	stored := &store.Message{
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		PropertyID: msg.PropertyID,
		Content:    content,
		SentAt:     s.now(),
	}
	if err := s.store.SaveMessage(ctx, stored); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return stored, nil
}

// MarkMessageAsRead flips the read flag of a message.
func (s *Service) MarkMessageAsRead(ctx context.Context, messageID int64) error {
	if messageID <= 0 {
		return ErrInvalidMessageID
	}
	if err := s.store.MarkMessageRead(ctx, messageID); err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	return nil
}

// GetMessage retrieves a stored message.
func (s *Service) GetMessage(ctx context.Context, messageID int64) (*store.Message, error) {
	if messageID <= 0 {
		return nil, ErrInvalidMessageID
	}
	return s.store.GetMessage(ctx, messageID)
}

// Conversation returns the messages exchanged between two users, newest first.
func (s *Service) Conversation(ctx context.Context, userID, otherID int64, limit int, beforeID *int64) ([]*store.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = DefaultConversationLimit
	}
	msgs, err := s.store.ListConversation(ctx, userID, otherID, limit, beforeID)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return msgs, nil
}
