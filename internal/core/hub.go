package core

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/metrics"
)

// Hub owns the connection and room registries and serializes every mutation
// of them through a single goroutine started by Run.
type Hub struct {
	commands chan command
	done     chan struct{}

	clients  clientTable
	sessions *ConnectionRegistry
	rooms    *RoomRegistry
	bc       *Broadcaster

	clock   clock.Clock
	log     *zerolog.Logger
	metrics *metrics.Metrics
}

// Option customizes a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) { h.log = logger }
}

// WithClock sets the clock used to stamp messages.
func WithClock(c clock.Clock) Option {
	return func(h *Hub) { h.clock = c }
}

// WithMetrics sets the collectors the hub reports to.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a new chat hub instance.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		commands: make(chan command),
		done:     make(chan struct{}),
		clients:  make(clientTable),
		sessions: NewConnectionRegistry(),
		rooms:    NewRoomRegistry(),
		clock:    clock.New(),
		log:      &nop,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.bc = NewBroadcaster(h.clients, h.rooms, h.log, h.metrics)
	return h
}

// Run processes commands until ctx is cancelled. It must be called once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Int("connections", len(h.clients)).Msg("hub stopped")
			return
		case cmd := <-h.commands:
			h.process(cmd)
		}
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) process(cmd command) {
	switch cmd.kind {
	case commandRegister:
		h.clients[cmd.client.ID] = cmd.client
		h.metrics.SetConnections(len(h.clients))
		h.log.Debug().Str("conn_id", cmd.client.ID).Msg("client registered")
		close(cmd.done)
	case commandUnregister:
		h.disconnect(cmd.client.ID)
		close(cmd.done)
	case commandRequest:
		ack := h.dispatch(cmd.conn, cmd.req)
		h.metrics.Request(requestName(cmd.req), ack.Status)
		cmd.ack <- ack
	case commandSnapshot:
		cmd.rooms <- h.snapshot()
	}
	h.metrics.SetOccupancy(h.sessions.Len(), h.rooms.Len())
}

func (h *Hub) submit(ctx context.Context, cmd command) error {
	select {
	case h.commands <- cmd:
		return nil
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterClient attaches client so broadcasts can reach it. It returns once
// the hub has recorded the client, or ErrHubStopped if the hub is gone.
func (h *Hub) RegisterClient(client *Client) error {
	return h.await(command{kind: commandRegister, client: client, done: make(chan struct{})})
}

// UnregisterClient is the disconnect transition: it cleans up the client's
// session, notifies the room it was in and detaches its queue. It is a no-op
// on a stopped hub.
func (h *Hub) UnregisterClient(client *Client) {
	_ = h.await(command{kind: commandUnregister, client: client, done: make(chan struct{})})
}

// await submits cmd and waits until the loop has processed it.
func (h *Hub) await(cmd command) error {
	if err := h.submit(context.Background(), cmd); err != nil {
		return err
	}
	select {
	case <-cmd.done:
		return nil
	case <-h.done:
		// A received command is processed before Run returns.
		select {
		case <-cmd.done:
			return nil
		default:
			return ErrHubStopped
		}
	}
}

// Rooms returns a snapshot of every live room and its roster.
func (h *Hub) Rooms(ctx context.Context) ([]RoomSnapshot, error) {
	cmd := command{kind: commandSnapshot, rooms: make(chan []RoomSnapshot, 1)}
	if err := h.submit(ctx, cmd); err != nil {
		return nil, err
	}
	select {
	case rooms := <-cmd.rooms:
		return rooms, nil
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) snapshot() []RoomSnapshot {
	names := h.rooms.Names()
	out := make([]RoomSnapshot, 0, len(names))
	for _, name := range names {
		out = append(out, RoomSnapshot{Room: name, Users: h.rooms.Usernames(name)})
	}
	return out
}
