package core

import "context"

// Handle routes req from conn to the matching lifecycle transition and
// returns its acknowledgement. Domain failures are reported in the Ack; the
// error is non-nil only when the hub could not process the request at all.
func (h *Hub) Handle(ctx context.Context, conn string, req Request) (Ack, error) {
	cmd := command{kind: commandRequest, conn: conn, req: req, ack: make(chan Ack, 1)}
	if err := h.submit(ctx, cmd); err != nil {
		return Ack{}, err
	}
	select {
	case ack := <-cmd.ack:
		return ack, nil
	case <-h.done:
		return Ack{}, ErrHubStopped
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	}
}

func (h *Hub) dispatch(conn string, req Request) Ack {
	switch r := req.(type) {
	case JoinRequest:
		return h.join(conn, r)
	case MessageRequest:
		return h.message(conn, r.Text)
	case LeaveRequest:
		return h.leave(conn)
	default:
		return ErrorAck(coreError(ErrCodeInvalidMessage, "unknown request", ErrBadRequest))
	}
}

func requestName(req Request) string {
	switch req.(type) {
	case JoinRequest:
		return "join"
	case MessageRequest:
		return "message"
	case LeaveRequest:
		return "leave"
	default:
		return "unknown"
	}
}
