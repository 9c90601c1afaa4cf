package core

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain returns every event currently queued on ch without waiting.
func drain(ch <-chan *Event) []*Event {
	var out []*Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// startHub runs a hub with a mock clock until the test ends.
func startHub(t *testing.T) (*Hub, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	hub := NewHub(WithClock(mock))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})
	return hub, mock
}

func mustHandle(t *testing.T, hub *Hub, conn string, req Request) Ack {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ack, err := hub.Handle(ctx, conn, req)
	if err != nil {
		t.Fatalf("handle %T for %s: %v", req, conn, err)
	}
	return ack
}

// newIdleHub returns a hub whose loop is not running, for driving lifecycle
// transitions directly from the test goroutine.
func newIdleHub(clients ...*Client) *Hub {
	hub := NewHub(WithClock(clock.NewMock()))
	for _, c := range clients {
		hub.clients[c.ID] = c
	}
	return hub
}

// checkConsistency asserts that every session matches exactly one roster entry
// and that no roster entry or empty room exists without a session.
func checkConsistency(t *testing.T, h *Hub) {
	t.Helper()

	seen := make(map[string]string)
	for _, name := range h.rooms.Names() {
		roster := h.rooms.Roster(name)
		if len(roster) == 0 {
			t.Fatalf("room %q retained with empty roster", name)
		}
		for _, m := range roster {
			if prev, dup := seen[m.Conn]; dup {
				t.Fatalf("conn %s in rooms %q and %q", m.Conn, prev, name)
			}
			seen[m.Conn] = name
			s, ok := h.sessions.Get(m.Conn)
			if !ok {
				t.Fatalf("conn %s on roster of %q without session", m.Conn, name)
			}
			if s.Room != name || s.Username != m.Username {
				t.Fatalf("conn %s session %+v does not match roster entry %q/%q", m.Conn, s, name, m.Username)
			}
		}
	}
	if len(seen) != h.sessions.Len() {
		t.Fatalf("sessions=%d roster entries=%d", h.sessions.Len(), len(seen))
	}
}
