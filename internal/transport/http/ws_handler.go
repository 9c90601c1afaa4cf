package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/proto"
	"github.com/vovakirdan/roomrelay/internal/utils"
)

// Hub is the part of the core the transport talks to.
type Hub interface {
	RegisterClient(client *core.Client) error
	UnregisterClient(client *core.Client)
	Handle(ctx context.Context, conn string, req core.Request) (core.Ack, error)
	Rooms(ctx context.Context) ([]core.RoomSnapshot, error)
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub             Hub
	log             *zerolog.Logger
	originPatterns  []string
	maxMessageBytes int64
	sendBuffer      int
	rateLimit       int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:             hub,
		log:             logger,
		originPatterns:  cfg.OriginPatterns,
		maxMessageBytes: cfg.MaxMessageBytes,
		sendBuffer:      cfg.SendBuffer,
		rateLimit:       cfg.RateLimitPerMinute,
	}
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	if len(h.originPatterns) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: h.originPatterns}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.maxMessageBytes > 0 {
		conn.SetReadLimit(h.maxMessageBytes)
	}

	client := core.NewClient(utils.NewID(), h.sendBuffer)
	if err := h.hub.RegisterClient(client); err != nil {
		h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws register failed")
		conn.Close(websocket.StatusTryAgainLater, "server unavailable")
		return
	}
	defer h.hub.UnregisterClient(client)

	h.log.Info().Str("conn_id", client.ID).Str("remote", r.RemoteAddr).Msg("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	limiter := newRateLimiter(h.rateLimit)
	stop := make(chan struct{})
	limiter.startReset(stop)
	defer close(stop)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Str("conn_id", client.ID).Str("reason", status.String()).Msg("client disconnected")
	conn.Close(status, reason)
}

// readLoop decodes frames and hands them to the hub. Everything it answers
// with goes through client.Events, so the write loop is the only writer.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("malformed inbound")
			if err := enqueue(ctx, client, errorFrame(0, errMalformed)); err != nil {
				return err
			}
			continue
		}

		if !limiter.allow() {
			h.log.Debug().Str("conn_id", client.ID).Str("event", inbound.Type).Msg("rate limited")
			if err := reject(ctx, client, inbound.ID, errRateLimited); err != nil {
				return err
			}
			continue
		}

		req, protoErr := inboundToRequest(inbound)
		if protoErr != nil {
			if protoErr == errUnknownType {
				if err := enqueue(ctx, client, errorFrame(inbound.ID, protoErr)); err != nil {
					return err
				}
				continue
			}
			if err := reject(ctx, client, inbound.ID, protoErr); err != nil {
				return err
			}
			continue
		}

		ack, err := h.hub.Handle(ctx, client.ID, req)
		if err != nil {
			return err
		}
		if inbound.ID > 0 {
			if err := enqueue(ctx, client, core.AckEvent(inbound.ID, ack)); err != nil {
				return err
			}
		}
	}
}

// reject answers a request the hub never saw: as an ack when the client asked
// for one, otherwise as a protocol error.
func reject(ctx context.Context, client *core.Client, id int64, e *proto.Error) error {
	if id > 0 {
		return enqueue(ctx, client, errorAck(id, e))
	}
	return enqueue(ctx, client, errorFrame(0, e))
}

// enqueue puts ev on the client's outbound queue behind any events the hub
// already queued for it.
func enqueue(ctx context.Context, client *core.Client, ev *core.Event) error {
	select {
	case client.Events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
