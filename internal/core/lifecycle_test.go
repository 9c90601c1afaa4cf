package core

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycle_RandomTransitionsKeepRegistriesConsistent(t *testing.T) {
	const conns = 8
	clients := make([]*Client, conns)
	for i := range clients {
		clients[i] = NewClient(fmt.Sprintf("c%d", i), 1024)
	}
	hub := newIdleHub(clients...)

	rng := rand.New(rand.NewSource(42))
	rooms := []string{"r1", "r2", "r3"}
	names := []string{"alice", "bob", "alice", " carol "}

	for step := 0; step < 2000; step++ {
		conn := clients[rng.Intn(conns)].ID
		switch rng.Intn(5) {
		case 0, 1:
			hub.dispatch(conn, JoinRequest{Username: names[rng.Intn(len(names))], Room: rooms[rng.Intn(len(rooms))]})
		case 2:
			hub.dispatch(conn, MessageRequest{Text: "x"})
		case 3:
			hub.dispatch(conn, LeaveRequest{})
		case 4:
			hub.cleanup(conn)
		}
		checkConsistency(t, hub)
		for _, c := range clients {
			drain(c.Events)
		}
	}
}

func TestLifecycle_DuplicateUsernamesAllowed(t *testing.T) {
	a, b := NewClient("a", 8), NewClient("b", 8)
	hub := newIdleHub(a, b)

	require.True(t, hub.join("a", JoinRequest{Username: "sam", Room: "r"}).OK())
	ack := hub.join("b", JoinRequest{Username: "sam", Room: "r"})
	require.True(t, ack.OK())
	assert.Equal(t, []string{"sam", "sam"}, ack.Users)

	hub.leave("a")
	assert.Equal(t, []string{"sam"}, hub.rooms.Usernames("r"))
	s, ok := hub.sessions.Get("b")
	require.True(t, ok)
	assert.Equal(t, Session{Username: "sam", Room: "r"}, s)
	checkConsistency(t, hub)
}

func TestLifecycle_RosterInJoinOrder(t *testing.T) {
	a, b, c := NewClient("a", 8), NewClient("b", 8), NewClient("c", 8)
	hub := newIdleHub(a, b, c)

	hub.join("c", JoinRequest{Username: "carol", Room: "r"})
	hub.join("a", JoinRequest{Username: "alice", Room: "r"})
	ack := hub.join("b", JoinRequest{Username: "bob", Room: "r"})

	assert.Equal(t, []string{"carol", "alice", "bob"}, ack.Users)
}

func TestLifecycle_InvalidJoinKeepsExistingSession(t *testing.T) {
	a := NewClient("a", 8)
	hub := newIdleHub(a)

	hub.join("a", JoinRequest{Username: "alice", Room: "r1"})
	drain(a.Events)

	ack := hub.join("a", JoinRequest{Username: "alice", Room: ""})
	assert.Equal(t, StatusError, ack.Status)
	assert.Equal(t, ErrCodeBadRequest, ack.Code)

	s, ok := hub.sessions.Get("a")
	require.True(t, ok)
	assert.Equal(t, "r1", s.Room)
	assert.Empty(t, drain(a.Events))
}

func TestLifecycle_WhitespaceJoinStoredTrimmed(t *testing.T) {
	a, b := NewClient("a", 8), NewClient("b", 8)
	hub := newIdleHub(a, b)

	hub.join("b", JoinRequest{Username: "bob", Room: "r1"})
	drain(b.Events)

	ack := hub.join("a", JoinRequest{Username: "   ", Room: " r1 "})
	require.Equal(t, StatusOK, ack.Status, "present fields pass validation before trimming")
	assert.Equal(t, []string{"bob", ""}, ack.Users)

	s, ok := hub.sessions.Get("a")
	require.True(t, ok)
	assert.Equal(t, Session{Username: "", Room: "r1"}, s)

	notice := mustEvent(t, b.Events, EventMessage)
	assert.Equal(t, " joined r1", notice.Message.Text)
	checkConsistency(t, hub)
}

func TestLifecycle_JoinAckUsersNotSharedWithBroadcast(t *testing.T) {
	a, b := NewClient("a", 8), NewClient("b", 8)
	hub := newIdleHub(a, b)

	hub.join("a", JoinRequest{Username: "alice", Room: "r"})
	drain(a.Events)

	ack := hub.join("b", JoinRequest{Username: "bob", Room: "r"})
	require.Equal(t, []string{"alice", "bob"}, ack.Users)
	ack.Users[0] = "mallory"

	roster := mustEvent(t, a.Events, EventRoomData)
	assert.Equal(t, []string{"alice", "bob"}, roster.Users)
	own := mustEvent(t, b.Events, EventRoomData)
	assert.Same(t, &roster.Users[0], &own.Users[0], "recipients share one payload")
}

func TestLifecycle_DisconnectDetachesClient(t *testing.T) {
	a, b := NewClient("a", 8), NewClient("b", 8)
	hub := newIdleHub(a, b)

	hub.join("a", JoinRequest{Username: "alice", Room: "r"})
	hub.join("b", JoinRequest{Username: "bob", Room: "r"})
	hub.disconnect("a")

	_, attached := hub.clients["a"]
	assert.False(t, attached)
	assert.Equal(t, []string{"bob"}, hub.rooms.Usernames("r"))

	drain(a.Events)
	hub.message("b", "anyone?")
	assert.Empty(t, drain(a.Events), "detached client must not receive room traffic")
	checkConsistency(t, hub)
}

func TestLifecycle_UnknownRequest(t *testing.T) {
	hub := newIdleHub()

	ack := hub.dispatch("a", nil)
	assert.Equal(t, StatusError, ack.Status)
	assert.Equal(t, ErrCodeInvalidMessage, ack.Code)
}
