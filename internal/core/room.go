package core

import (
	"sort"

	"github.com/samber/lo"
)

// Member is one roster entry of a room.
type Member struct {
	Conn     string
	Username string
	seq      uint64
}

// Room groups the connections currently joined under the same room name.
type Room struct {
	Name    string
	members map[string]Member
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[string]Member),
	}
}

// AddMember inserts or replaces the roster entry for conn.
func (r *Room) AddMember(m Member) {
	r.members[m.Conn] = m
}

// RemoveMember deletes conn from the roster. Returns true if it was present.
func (r *Room) RemoveMember(conn string) bool {
	if _, exists := r.members[conn]; !exists {
		return false
	}
	delete(r.members, conn)
	return true
}

// Members returns the roster in join order.
func (r *Room) Members() []Member {
	out := lo.Values(r.members)
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Usernames returns the display names of the roster in join order.
// Duplicates are kept.
func (r *Room) Usernames() []string {
	return lo.Map(r.Members(), func(m Member, _ int) string { return m.Username })
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
