package http

import (
	"bytes"
	"encoding/json"

	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

var (
	errUnknownType    = &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown event type"}
	errMalformed      = &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "malformed envelope"}
	errInvalidPayload = &proto.Error{Code: core.ErrCodeBadRequest, Msg: "invalid payload"}
	errRateLimited    = &proto.Error{Code: core.ErrCodeRateLimited, Msg: "rate limit exceeded"}
)

// inboundToRequest turns a named event into the matching request variant.
// A missing or null payload decodes as the zero value so the lifecycle can
// report its own validation error.
func inboundToRequest(inbound proto.Inbound) (core.Request, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := decodeData(inbound.Data, &join); err != nil {
			return nil, errInvalidPayload
		}
		return core.JoinRequest{Username: join.Username, Room: join.Room}, nil
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := decodeData(inbound.Data, &msg); err != nil {
			return nil, errInvalidPayload
		}
		return core.MessageRequest{Text: msg.Text}, nil
	case proto.InboundTypeLeave:
		return core.LeaveRequest{}, nil
	default:
		return nil, errUnknownType
	}
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// errorAck answers a request that never reached the hub.
func errorAck(id int64, e *proto.Error) *core.Event {
	return core.AckEvent(id, core.Ack{Status: core.StatusError, Code: e.Code, Message: e.Msg})
}

// errorFrame reports a frame that could not be routed.
func errorFrame(id int64, e *proto.Error) *core.Event {
	return core.ErrorEvent(id, e.Code, e.Msg)
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		msg := proto.EventMessage{
			System: event.Message.System,
			Text:   event.Message.Text,
			Time:   event.Message.Time.UTC().Format(proto.TimeLayout),
		}
		if !event.Message.System {
			msg.User = event.Message.User
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMessage,
			Data:  msg,
		}
	case core.EventRoomData:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameRoomData,
			Data:  proto.EventRoomData{Room: event.Room, Users: users},
		}
	case core.EventAck:
		if event.Ack == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, ID: event.AckID, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type: proto.OutboundTypeAck,
			ID:   event.AckID,
			Data: proto.AckData{
				Status:  event.Ack.Status,
				Users:   event.Ack.Users,
				Message: event.Ack.Message,
			},
		}
	case core.EventError:
		perr := &proto.Error{Code: "unknown", Msg: "unknown error"}
		if event.Err != nil {
			perr = &proto.Error{Code: event.Err.Code, Msg: event.Err.Message}
		}
		return proto.Outbound{Type: proto.OutboundTypeError, ID: event.AckID, Error: perr}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
