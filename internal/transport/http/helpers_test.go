package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
	"github.com/vovakirdan/roomrelay/internal/proto"
)

// startTestServer runs a hub and an httptest server around it until the test ends.
func startTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	disabledLogger := zerolog.Nop()
	reg := prometheus.NewRegistry()
	hub := core.NewHub(
		core.WithLogger(&disabledLogger),
		core.WithClock(clock.NewMock()),
		core.WithMetrics(metrics.New(reg)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	if mutate != nil {
		mutate(&cfg)
	}

	server := NewServer(hub, &cfg, &disabledLogger, reg)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-hub.Done()
	})
	return ts
}

type testConn struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
	next int64
}

func dial(t *testing.T, ctx context.Context, ts *httptest.Server) *testConn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return &testConn{t: t, ctx: ctx, conn: conn}
}

// emit sends a named event with an ack id and returns that id.
func (c *testConn) emit(event string, data any) int64 {
	c.t.Helper()

	c.next++
	in := proto.Inbound{Type: event, ID: c.next}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			c.t.Fatalf("marshal %s: %v", event, err)
		}
		in.Data = raw
	}
	if err := wsjson.Write(c.ctx, c.conn, in); err != nil {
		c.t.Fatalf("send %s: %v", event, err)
	}
	return c.next
}

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	ID    int64           `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (c *testConn) read() frame {
	c.t.Helper()

	var f frame
	if err := wsjson.Read(c.ctx, c.conn, &f); err != nil {
		c.t.Fatalf("read: %v", err)
	}
	return f
}

// ack reads frames until the ack for id, returning it and the events seen before it.
func (c *testConn) ack(id int64) (proto.AckData, []frame) {
	c.t.Helper()

	var before []frame
	for {
		f := c.read()
		if f.Type == proto.OutboundTypeAck && f.ID == id {
			var ack proto.AckData
			if err := json.Unmarshal(f.Data, &ack); err != nil {
				c.t.Fatalf("unmarshal ack: %v", err)
			}
			return ack, before
		}
		before = append(before, f)
	}
}

func (c *testConn) event(name string) frame {
	c.t.Helper()

	for {
		f := c.read()
		if f.Type == proto.OutboundTypeEvent && f.Event == name {
			return f
		}
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %T: %v", v, err)
	}
	return v
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
