package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
// Type is the event name; a positive ID asks for an acknowledgement.
type Inbound struct {
	Type string          `json:"type"`
	ID   int64           `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeJoin    = "join"
	InboundTypeMessage = "message"
	InboundTypeLeave   = "leave"

	OutboundTypeEvent = "event"
	OutboundTypeAck   = "ack"
	OutboundTypeError = "error"

	EventNameMessage  = "message"
	EventNameRoomData = "roomData"

	// TimeLayout is ISO-8601 in UTC with millisecond precision.
	TimeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// JoinData requests to join a room under a display name.
type JoinData struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessageData is a chat line from the client.
type MessageData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	ID    int64  `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage is a chat or system message delivered to room members.
type EventMessage struct {
	System bool   `json:"system"`
	Text   string `json:"text"`
	User   string `json:"user,omitempty"`
	Time   string `json:"time"`
}

// EventRoomData carries the current roster of a room.
type EventRoomData struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

// AckData answers an inbound event that carried an ID.
type AckData struct {
	Status  string   `json:"status"`
	Users   []string `json:"users,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
