package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	select {
	case ev := <-ch:
		if ev == nil || ev.Kind != kind {
			t.Fatalf("expected event %v, got %+v", kind, ev)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event kind %v not received", kind)
		return nil
	}
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v: %+v", ev.Kind, ev)
	default:
	}
}

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestClient(id string, userID int64, firstName string) *Client {
	return NewClient(id, Identity{UserID: userID, FirstName: firstName, Role: "tenant"}, 16)
}

var errBoom = errors.New("boom")

// fakeMessages is an in-memory MessageService.
type fakeMessages struct {
	mu       sync.Mutex
	nextID   int64
	stored   map[int64]*store.Message
	sendErr  error
	readErr  error
	readCall []int64
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{stored: make(map[int64]*store.Message)}
}

func (f *fakeMessages) SendMessage(_ context.Context, msg *store.Message) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.nextID++
	stored := *msg
	stored.ID = f.nextID
	stored.SentAt = time.Now().UTC()
	f.stored[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeMessages) MarkMessageAsRead(_ context.Context, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readCall = append(f.readCall, messageID)
	if f.readErr != nil {
		return f.readErr
	}
	msg, ok := f.stored[messageID]
	if !ok {
		return store.ErrNotFound
	}
	msg.IsRead = true
	return nil
}

func (f *fakeMessages) GetMessage(_ context.Context, messageID int64) (*store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.stored[messageID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return msg, nil
}

type historyCall struct {
	userID   int64
	page     int
	pageSize int
}

// fakeNotifications is an in-memory NotificationService.
type fakeNotifications struct {
	mu           sync.Mutex
	nextID       int64
	stored       map[int64]*store.Notification
	createErr    error
	opErr        error
	historyCalls []historyCall
	historyPage  *store.NotificationPage
	markAllCalls []int64
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{stored: make(map[int64]*store.Notification)}
}

func (f *fakeNotifications) add(userID int64, text string) *store.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := &store.Notification{ID: f.nextID, UserID: userID, Message: text, Type: store.NotificationTypeSystem, CreatedAt: time.Now().UTC()}
	f.stored[n.ID] = n
	return n
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *store.Notification) (*store.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	stored := *n
	stored.ID = f.nextID
	stored.CreatedAt = time.Now().UTC()
	f.stored[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeNotifications) GetUnreadNotifications(_ context.Context, userID int64) ([]*store.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return nil, f.opErr
	}
	var out []*store.Notification
	for _, n := range f.stored {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, notificationID, userID int64) (*store.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.opErr != nil {
		return nil, f.opErr
	}
	n, ok := f.stored[notificationID]
	if !ok || n.UserID != userID {
		return nil, store.ErrNotFound
	}
	n.IsRead = true
	return n, nil
}

func (f *fakeNotifications) MarkAllAsRead(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markAllCalls = append(f.markAllCalls, userID)
	if f.opErr != nil {
		return f.opErr
	}
	for _, n := range f.stored {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifications) GetNotificationHistory(_ context.Context, userID int64, page, pageSize int) (*store.NotificationPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, historyCall{userID: userID, page: page, pageSize: pageSize})
	if f.opErr != nil {
		return nil, f.opErr
	}
	if f.historyPage != nil {
		return f.historyPage, nil
	}
	return &store.NotificationPage{Page: page, PageSize: pageSize}, nil
}

// fakeUsers resolves first names from a map.
type fakeUsers map[int64]string

func (f fakeUsers) GetUserByID(_ context.Context, id int64) (*store.User, error) {
	name, ok := f[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.User{ID: id, FirstName: name}, nil
}
