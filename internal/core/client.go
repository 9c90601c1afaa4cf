package core

// DefaultSendBuffer is the outbound queue size used when none is configured.
const DefaultSendBuffer = 64

// Client is one live connection as seen by the core layer.
// Events is the connection's outbound queue; the hub only ever writes to it
// without blocking.
type Client struct {
	ID     string
	Events chan *Event
}

// NewClient constructs a client with an outbound queue of the given size.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// clientTable maps connection ids to their outbound queues. It is the hub's
// Emitter and is only touched from the hub goroutine.
type clientTable map[string]*Client

func (t clientTable) Emit(conn string, ev *Event) bool {
	c, ok := t[conn]
	if !ok {
		return false
	}
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
