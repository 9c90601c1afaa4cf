package core

// commandKind describes what the hub loop is asked to do.
type commandKind int

const (
	// commandRegister attaches a client's outbound queue.
	commandRegister commandKind = iota
	// commandUnregister runs disconnect cleanup and detaches the client.
	commandUnregister
	// commandRequest routes an acknowledged request to the lifecycle.
	commandRequest
	// commandSnapshot reads every live roster.
	commandSnapshot
)

// command is one unit of work for the hub loop. Commands are processed one at
// a time, so each sees and leaves both registries consistent.
type command struct {
	kind   commandKind
	client *Client
	conn   string
	req    Request

	ack   chan Ack
	rooms chan []RoomSnapshot
	done  chan struct{}
}

// RoomSnapshot is a point-in-time copy of one roster.
type RoomSnapshot struct {
	Room  string
	Users []string
}
