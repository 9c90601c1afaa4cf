package core

import (
	"fmt"
	"slices"
)

// join moves conn into req.Room under req.Username. Any previous session is
// cleaned up first, including when the target is the room conn is already in.
func (h *Hub) join(conn string, req JoinRequest) Ack {
	req, err := req.Normalize()
	if err != nil {
		return ErrorAck(errMissingFields)
	}

	h.cleanup(conn)

	h.sessions.Put(conn, Session{Username: req.Username, Room: req.Room})
	h.rooms.AddMember(req.Room, conn, req.Username)

	text := fmt.Sprintf("%s joined %s", req.Username, req.Room)
	h.bc.ToRoomExcept(req.Room, conn, h.systemEvent(req.Room, text))

	// The roomData payload is shared by every recipient; the ack gets its own copy.
	users := h.rooms.Usernames(req.Room)
	h.bc.ToRoom(req.Room, roomDataEvent(req.Room, users))

	h.log.Info().Str("conn_id", conn).Str("room", req.Room).Str("user", req.Username).Msg("joined room")
	return Ack{Status: StatusOK, Users: slices.Clone(users)}
}

// message relays text to everyone in the sender's room, the sender included.
func (h *Hub) message(conn, text string) Ack {
	s, ok := h.sessions.Get(conn)
	if !ok {
		return ErrorAck(errNotJoined)
	}

	h.bc.ToRoom(s.Room, &Event{
		Kind: EventMessage,
		Room: s.Room,
		Message: Message{
			Room: s.Room,
			User: s.Username,
			Text: text,
			Time: h.clock.Now(),
		},
	})

	h.log.Debug().Str("conn_id", conn).Str("room", s.Room).Str("user", s.Username).Msg("room message")
	return ackOK()
}

func (h *Hub) leave(conn string) Ack {
	h.cleanup(conn)
	return ackOK()
}

func (h *Hub) disconnect(conn string) {
	h.cleanup(conn)
	delete(h.clients, conn)
	h.metrics.SetConnections(len(h.clients))
	h.log.Debug().Str("conn_id", conn).Msg("client unregistered")
}

// cleanup removes conn's session and roster entry. It is a no-op when conn has
// no session, so leave and disconnect may run any number of times.
func (h *Hub) cleanup(conn string) {
	s, ok := h.sessions.Remove(conn)
	if !ok {
		return
	}

	if h.rooms.RemoveMember(s.Room, conn) {
		h.log.Info().Str("conn_id", conn).Str("room", s.Room).Str("user", s.Username).Msg("left room, room closed")
		return
	}

	h.bc.ToRoom(s.Room, h.systemEvent(s.Room, s.Username+" left"))
	h.bc.ToRoom(s.Room, roomDataEvent(s.Room, h.rooms.Usernames(s.Room)))

	h.log.Info().Str("conn_id", conn).Str("room", s.Room).Str("user", s.Username).Msg("left room")
}

func (h *Hub) systemEvent(room, text string) *Event {
	return &Event{
		Kind:    EventMessage,
		Room:    room,
		Message: systemMessage(room, text, h.clock.Now()),
	}
}

// roomDataEvent is fanned out as a single value; users must not be mutated
// after the call.
func roomDataEvent(room string, users []string) *Event {
	return &Event{Kind: EventRoomData, Room: room, Users: users}
}
