package messages

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/rentline-server/internal/store"
	"github.com/vovakirdan/rentline-server/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.SQLiteStore, *store.User, *store.User) {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	tenant, err := st.CreateUser(ctx, &store.User{Email: "tina@example.com", PasswordHash: "x", FirstName: "Tina", Role: store.RoleTenant})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	landlord, err := st.CreateUser(ctx, &store.User{Email: "lou@example.com", PasswordHash: "x", FirstName: "Lou", Role: store.RoleLandlord})
	if err != nil {
		t.Fatalf("create landlord: %v", err)
	}

	return New(st), st, tenant, landlord
}

func TestSendMessage_Validation(t *testing.T) {
	svc, _, tenant, landlord := newTestService(t)
	ctx := context.Background()
	missingProperty := int64(77)

	tests := []struct {
		name string
		msg  store.Message
		want error
	}{
		{name: "empty", msg: store.Message{SenderID: tenant.ID, ReceiverID: landlord.ID, Content: "   "}, want: ErrEmptyContent},
		{name: "too long", msg: store.Message{SenderID: tenant.ID, ReceiverID: landlord.ID, Content: strings.Repeat("a", MaxContentLength+1)}, want: ErrContentTooLong},
		{name: "self", msg: store.Message{SenderID: tenant.ID, ReceiverID: tenant.ID, Content: "hi"}, want: ErrCannotMessageSelf},
		{name: "unknown recipient", msg: store.Message{SenderID: tenant.ID, ReceiverID: 999, Content: "hi"}, want: ErrRecipientNotFound},
		{name: "unknown property", msg: store.Message{SenderID: tenant.ID, ReceiverID: landlord.ID, PropertyID: &missingProperty, Content: "hi"}, want: ErrPropertyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			if _, err := svc.SendMessage(ctx, &msg); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSendMessage_AssignsIDAndTimestamp(t *testing.T) {
	svc, st, tenant, landlord := newTestService(t)
	ctx := context.Background()

	property, err := st.CreateProperty(ctx, &store.Property{
		LandlordID: landlord.ID, Title: "Loft", Address: "1 Main", City: "Austin", MonthlyRent: 100000, Available: true,
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	stored, err := svc.SendMessage(ctx, &store.Message{
		SenderID:   tenant.ID,
		ReceiverID: landlord.ID,
		PropertyID: &property.ID,
		Content:    "  Is it available?  ",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if stored.ID == 0 || stored.SentAt.IsZero() || stored.IsRead {
		t.Fatalf("unexpected stored message: %+v", stored)
	}
	if stored.Content != "Is it available?" {
		t.Fatalf("expected trimmed content, got %q", stored.Content)
	}

	if err := svc.MarkMessageAsRead(ctx, stored.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	got, err := svc.GetMessage(ctx, stored.ID)
	if err != nil {
		t.Fatalf("get message: %v", err)
	}
	if !got.IsRead || got.PropertyID == nil || *got.PropertyID != property.ID {
		t.Fatalf("unexpected message: %+v", got)
	}

	if err := svc.MarkMessageAsRead(ctx, 0); !errors.Is(err, ErrInvalidMessageID) {
		t.Fatalf("expected ErrInvalidMessageID, got %v", err)
	}
	if err := svc.MarkMessageAsRead(ctx, 555); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConversation(t *testing.T) {
	svc, _, tenant, landlord := newTestService(t)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.SendMessage(ctx, &store.Message{SenderID: tenant.ID, ReceiverID: landlord.ID, Content: text}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	msgs, err := svc.Conversation(ctx, landlord.ID, tenant.ID, 2, nil)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Content != "three" || msgs[1].Content != "two" {
		t.Fatalf("unexpected conversation: %+v", msgs)
	}
}
