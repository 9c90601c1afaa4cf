package core

import (
	"sort"

	"github.com/samber/lo"
)

// Session is the room membership currently held by a connection.
type Session struct {
	Username string
	Room     string
}

// ConnectionRegistry maps a connection id to its session.
// It enforces nothing; the lifecycle keeps it consistent with RoomRegistry.
type ConnectionRegistry struct {
	sessions map[string]Session
}

// NewConnectionRegistry returns an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{sessions: make(map[string]Session)}
}

// Put installs or replaces the session for conn.
func (r *ConnectionRegistry) Put(conn string, s Session) {
	r.sessions[conn] = s
}

// Get returns the session for conn, if any.
func (r *ConnectionRegistry) Get(conn string) (Session, bool) {
	s, ok := r.sessions[conn]
	return s, ok
}

// Remove deletes and returns the session for conn, if any.
func (r *ConnectionRegistry) Remove(conn string) (Session, bool) {
	s, ok := r.sessions[conn]
	if ok {
		delete(r.sessions, conn)
	}
	return s, ok
}

// Len returns the number of joined connections.
func (r *ConnectionRegistry) Len() int {
	return len(r.sessions)
}

// RoomRegistry maps room names to their rosters. A room exists only while it
// has at least one member.
type RoomRegistry struct {
	rooms map[string]*Room
	seq   uint64
}

// NewRoomRegistry returns an empty registry.
func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[string]*Room)}
}

// AddMember puts conn on the roster of room, creating the room if needed.
func (r *RoomRegistry) AddMember(room, conn, username string) {
	rm, ok := r.rooms[room]
	if !ok {
		rm = NewRoom(room)
		r.rooms[room] = rm
	}
	r.seq++
	rm.AddMember(Member{Conn: conn, Username: username, seq: r.seq})
}

// RemoveMember takes conn off the roster of room and deletes the room if it
// became empty. Returns true when the room was deleted.
func (r *RoomRegistry) RemoveMember(room, conn string) bool {
	rm, ok := r.rooms[room]
	if !ok {
		return false
	}
	rm.RemoveMember(conn)
	if !rm.Empty() {
		return false
	}
	delete(r.rooms, room)
	return true
}

// Roster returns the members of room in join order; nil for an absent room.
func (r *RoomRegistry) Roster(room string) []Member {
	rm, ok := r.rooms[room]
	if !ok {
		return nil
	}
	return rm.Members()
}

// Usernames returns the display names on the roster of room.
func (r *RoomRegistry) Usernames(room string) []string {
	rm, ok := r.rooms[room]
	if !ok {
		return []string{}
	}
	return rm.Usernames()
}

// Names returns all live room names, sorted.
func (r *RoomRegistry) Names() []string {
	names := lo.Keys(r.rooms)
	sort.Strings(names)
	return names
}

// Len returns the number of live rooms.
func (r *RoomRegistry) Len() int {
	return len(r.rooms)
}
