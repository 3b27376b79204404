package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// ChatOptions tunes chat channel behaviour.
type ChatOptions struct {
	// ScopeReadReceipts sends MessageRead only to the sender and receiver
	// groups instead of every chat connection.
	ScopeReadReceipts bool
}

// ChatChannel delivers direct messages between users.
type ChatChannel struct {
	membership
	messages      MessageService
	notifications NotificationService
	users         UserDirectory
	opts          ChatOptions
}

// NewChatChannel builds the chat channel. users may be nil, in which case
// the sender name comes from the caller's identity.
func NewChatChannel(
	registry *Registry,
	messages MessageService,
	notifications NotificationService,
	users UserDirectory,
	opts ChatOptions,
	logger *zerolog.Logger,
) *ChatChannel {
	return &ChatChannel{
		membership:    membership{name: ChannelChat, registry: registry, log: logger},
		messages:      messages,
		notifications: notifications,
		users:         users,
		opts:          opts,
	}
}

// Handle executes one chat command.
func (ch *ChatChannel) Handle(ctx context.Context, c *Client, cmd *Command) error {
	switch cmd.Kind {
	case CommandSendMessage:
		_, err := ch.SendMessage(ctx, c, cmd.Message)
		return err
	case CommandMarkMessageAsRead:
		return ch.MarkMessageAsRead(ctx, c, cmd.MessageID)
	case CommandPing:
		ch.pong(c)
		return nil
	default:
		return fmt.Errorf("%w: %s on %s channel", ErrUnknownCommand, cmd.Kind, ch.name)
	}
}

// SendMessage persists a message from the caller, records a new-message
// notification for the receiver and pushes both to the receiver's
// connections. Nothing is pushed unless both records were stored.
func (ch *ChatChannel) SendMessage(ctx context.Context, c *Client, draft store.Message) (*store.Message, error) {
	if err := c.Identity.Validate(); err != nil {
		return nil, err
	}

	draft.ID = 0
	draft.SenderID = c.Identity.UserID
	draft.IsRead = false

	stored, err := ch.messages.SendMessage(ctx, &draft)
	if err != nil {
		ch.log.Error().Err(err).
			Str("client_id", c.ID).
			Int64("user_id", draft.SenderID).
			Int64("receiver_id", draft.ReceiverID).
			Msg("persist message")
		return nil, fmt.Errorf("send message: %w", err)
	}

	messageID := stored.ID
	notification, err := ch.notifications.CreateNotification(ctx, &store.Notification{
		UserID:          stored.ReceiverID,
		Message:         fmt.Sprintf("New message from %s", ch.senderName(ctx, c, stored.SenderID)),
		Type:            store.NotificationTypeNewMessage,
		RelatedEntityID: &messageID,
	})
	if err != nil {
		ch.log.Error().Err(err).
			Str("client_id", c.ID).
			Int64("message_id", stored.ID).
			Int64("receiver_id", stored.ReceiverID).
			Msg("persist message notification")
		return nil, fmt.Errorf("create message notification: %w", err)
	}

	group := GroupName(stored.ReceiverID)
	delivered := ch.registry.SendToGroup(group, &Event{Kind: EventReceiveMessage, Message: stored})
	ch.registry.SendToGroup(group, &Event{Kind: EventReceiveNotification, Notification: notification})

	ch.log.Debug().
		Int64("message_id", stored.ID).
		Int64("user_id", stored.SenderID).
		Str("group", group).
		Int("delivered", delivered).
		Msg("message sent")
	return stored, nil
}

// senderName prefers the stored profile and falls back to the token claim.
func (ch *ChatChannel) senderName(ctx context.Context, c *Client, senderID int64) string {
	if ch.users != nil {
		user, err := ch.users.GetUserByID(ctx, senderID)
		if err == nil && user.FirstName != "" {
			return user.FirstName
		}
		if err != nil {
			ch.log.Warn().Err(err).Int64("user_id", senderID).Msg("resolve sender name")
		}
	}
	if c.Identity.FirstName != "" {
		return c.Identity.FirstName
	}
	return "a user"
}

// MarkMessageAsRead persists the read flag and announces it with a
// MessageRead event. Unless ScopeReadReceipts is set the event goes to
// every chat connection.
func (ch *ChatChannel) MarkMessageAsRead(ctx context.Context, c *Client, messageID int64) error {
	if err := c.Identity.Validate(); err != nil {
		return err
	}

	if err := ch.messages.MarkMessageAsRead(ctx, messageID); err != nil {
		ch.log.Error().Err(err).
			Str("client_id", c.ID).
			Int64("message_id", messageID).
			Msg("mark message as read")
		return fmt.Errorf("mark message as read: %w", err)
	}

	event := &Event{Kind: EventMessageRead, MessageID: messageID}
	if !ch.opts.ScopeReadReceipts {
		ch.registry.Broadcast(event)
		return nil
	}

	msg, err := ch.messages.GetMessage(ctx, messageID)
	if err != nil {
		ch.log.Error().Err(err).Int64("message_id", messageID).Msg("load message for read receipt")
		return fmt.Errorf("load message: %w", err)
	}
	ch.registry.SendToUser(msg.SenderID, event)
	if msg.ReceiverID != msg.SenderID {
		ch.registry.SendToUser(msg.ReceiverID, event)
	}
	return nil
}
