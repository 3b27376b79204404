package http

import (
	"encoding/json"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/proto"
	"github.com/vovakirdan/rentline-server/internal/store"
)

func badRequest(msg string) *core.CoreError {
	return &core.CoreError{Code: core.ErrCodeBadRequest, Message: msg}
}

// decodeData unmarshals an optional data object. A missing object decodes
// as an empty one.
func decodeData(raw json.RawMessage, v any) *core.CoreError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest("invalid data: " + err.Error())
	}
	return nil
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *core.CoreError) {
	switch inbound.Type {
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if ce := decodeData(inbound.Data, &data); ce != nil {
			return nil, ce
		}
		if data.ReceiverID <= 0 {
			return nil, badRequest("receiverId is required")
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Message: store.Message{
				ReceiverID: data.ReceiverID,
				PropertyID: data.PropertyID,
				Content:    data.Content,
			},
		}, nil
	case proto.InboundTypeMarkMessageAsRead:
		var data proto.MessageIDData
		if ce := decodeData(inbound.Data, &data); ce != nil {
			return nil, ce
		}
		if data.MessageID <= 0 {
			return nil, badRequest("messageId is required")
		}
		return &core.Command{Kind: core.CommandMarkMessageAsRead, MessageID: data.MessageID}, nil
	case proto.InboundTypeGetUnreadNotifications:
		return &core.Command{Kind: core.CommandGetUnreadNotifications}, nil
	case proto.InboundTypeMarkAsRead:
		var data proto.NotificationIDData
		if ce := decodeData(inbound.Data, &data); ce != nil {
			return nil, ce
		}
		return &core.Command{Kind: core.CommandMarkNotificationAsRead, NotificationID: data.NotificationID}, nil
	case proto.InboundTypeMarkAllAsRead:
		return &core.Command{Kind: core.CommandMarkAllNotificationsAsRead}, nil
	case proto.InboundTypeGetNotificationHistory:
		var data proto.HistoryData
		if ce := decodeData(inbound.Data, &data); ce != nil {
			return nil, ce
		}
		return &core.Command{
			Kind:     core.CommandGetNotificationHistory,
			Page:     data.Page,
			PageSize: data.PageSize,
		}, nil
	case proto.InboundTypePing:
		return &core.Command{Kind: core.CommandPing}, nil
	default:
		return nil, &core.CoreError{Code: core.ErrCodeUnknownMethod, Message: "unknown message type"}
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent, Event: event.Kind.String()}

	switch event.Kind {
	case core.EventReceiveMessage:
		if event.Message != nil {
			out.Data = proto.FromMessage(event.Message)
		}
	case core.EventReceiveNotification:
		if event.Notification != nil {
			out.Data = proto.FromNotification(event.Notification)
		}
	case core.EventMessageRead:
		out.Data = proto.MessageIDData{MessageID: event.MessageID}
	case core.EventUnreadNotifications:
		out.Data = proto.FromNotifications(event.Notifications)
	case core.EventNotificationRead:
		out.Data = proto.NotificationIDData{NotificationID: event.NotificationID}
	case core.EventNotificationHistory:
		if event.Page != nil {
			out.Data = proto.FromNotificationPage(event.Page)
		}
	case core.EventAllNotificationsRead, core.EventPong:
	case core.EventError:
		out = proto.Outbound{Type: proto.OutboundTypeError}
		if event.Error == nil {
			out.Error = &proto.Error{Code: core.ErrCodeInternal, Msg: "unknown error"}
		} else {
			out.Error = &proto.Error{Code: event.Error.Code, Msg: event.Error.Message}
		}
	}
	return out
}

func errorEvent(ce *core.CoreError) *core.Event {
	return &core.Event{Kind: core.EventError, Error: ce}
}
