package core

import (
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/metrics"
)

// Emitter delivers one event to one connection. It must not block; a false
// return means the event was not queued.
type Emitter interface {
	Emit(conn string, ev *Event) bool
}

// Broadcaster fans events out to rooms using the roster held by rooms at the
// moment of the call.
type Broadcaster struct {
	emit    Emitter
	rooms   *RoomRegistry
	log     *zerolog.Logger
	metrics *metrics.Metrics
}

// NewBroadcaster builds a broadcaster over the given emitter and roster.
func NewBroadcaster(emit Emitter, rooms *RoomRegistry, logger *zerolog.Logger, m *metrics.Metrics) *Broadcaster {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Broadcaster{emit: emit, rooms: rooms, log: logger, metrics: m}
}

// ToConn sends ev to a single connection.
func (b *Broadcaster) ToConn(conn string, ev *Event) {
	if b.emit.Emit(conn, ev) {
		b.metrics.Emitted(ev.Kind.String())
		return
	}
	b.metrics.Dropped()
	b.log.Warn().Str("conn_id", conn).Str("event", ev.Kind.String()).Msg("dropped outbound event")
}

// ToRoom sends ev to every member of room.
func (b *Broadcaster) ToRoom(room string, ev *Event) {
	b.ToRoomExcept(room, "", ev)
}

// ToRoomExcept sends ev to every member of room other than except.
func (b *Broadcaster) ToRoomExcept(room, except string, ev *Event) {
	for _, m := range b.rooms.Roster(room) {
		if m.Conn == except {
			continue
		}
		b.ToConn(m.Conn, ev)
	}
}
