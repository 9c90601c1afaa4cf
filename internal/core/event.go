package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventMessage carries a chat or system message for a room.
	EventMessage EventKind = iota
	// EventRoomData carries the current roster of a room.
	EventRoomData
	// EventAck answers an inbound request. The core never broadcasts acks;
	// the transport queues them behind the events the request produced.
	EventAck
	// EventError reports a frame the transport could not route. Like acks it
	// travels through the client's queue so it keeps its place in line.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "message"
	case EventRoomData:
		return "roomData"
	case EventAck:
		return "ack"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind    EventKind
	Room    string
	Users   []string   // for EventRoomData
	Message Message    // for EventMessage
	Ack     *Ack       // for EventAck
	AckID   int64      // for EventAck and EventError, echoes the inbound request id
	Err     *CoreError // for EventError
}

// AckEvent wraps an acknowledgement so it can travel through a client's
// outbound queue.
func AckEvent(id int64, ack Ack) *Event {
	return &Event{Kind: EventAck, Ack: &ack, AckID: id}
}

// ErrorEvent wraps a protocol error for the client's outbound queue. id is 0
// when the offending frame carried none.
func ErrorEvent(id int64, code, msg string) *Event {
	return &Event{Kind: EventError, AckID: id, Err: &CoreError{Code: code, Message: msg}}
}
