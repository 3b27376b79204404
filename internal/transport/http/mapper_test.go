package http

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/proto"
	"github.com/vovakirdan/rentline-server/internal/store"
)

func TestInboundToCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.Command
		code string
	}{
		{
			name: "send message ignores sender",
			in:   `{"type":"SendMessage","data":{"senderId":5,"receiverId":7,"propertyId":3,"content":"hi"}}`,
			want: core.Command{Kind: core.CommandSendMessage, Message: store.Message{ReceiverID: 7, PropertyID: ptr(int64(3)), Content: "hi"}},
		},
		{
			name: "history without data keeps zero values",
			in:   `{"type":"GetNotificationHistory"}`,
			want: core.Command{Kind: core.CommandGetNotificationHistory},
		},
		{
			name: "history with paging",
			in:   `{"type":"GetNotificationHistory","data":{"page":2,"pageSize":20}}`,
			want: core.Command{Kind: core.CommandGetNotificationHistory, Page: 2, PageSize: 20},
		},
		{
			name: "mark as read",
			in:   `{"type":"MarkAsRead","data":{"notificationId":11}}`,
			want: core.Command{Kind: core.CommandMarkNotificationAsRead, NotificationID: 11},
		},
		{
			name: "mark message requires id",
			in:   `{"type":"MarkMessageAsRead","data":{}}`,
			code: core.ErrCodeBadRequest,
		},
		{
			name: "unknown type",
			in:   `{"type":"join","data":{"room":"general"}}`,
			code: core.ErrCodeUnknownMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inbound proto.Inbound
			require.NoError(t, json.Unmarshal([]byte(tt.in), &inbound))

			cmd, ce := inboundToCommand(inbound)
			if tt.code != "" {
				require.NotNil(t, ce)
				assert.Equal(t, tt.code, ce.Code)
				return
			}
			require.Nil(t, ce)
			assert.Equal(t, tt.want, *cmd)
		})
	}
}

func TestOutboundFromEvent(t *testing.T) {
	out := outboundFromEvent(&core.Event{Kind: core.EventAllNotificationsRead})
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"AllNotificationsRead"}`, string(raw))

	out = outboundFromEvent(&core.Event{Kind: core.EventUnreadNotifications})
	raw, err = json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"UnreadNotifications","data":[]}`, string(raw))

	out = outboundFromEvent(errorEvent(&core.CoreError{Code: core.ErrCodeNotFound, Message: "not found"}))
	raw, err = json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"error","error":{"code":"not_found","msg":"not found"}}`, string(raw))
}

func ptr[T any](v T) *T { return &v }
