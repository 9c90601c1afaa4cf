package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	ID    int64           `json:"id"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5003/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to join with")
	room := flag.String("room", "general", "room name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var nextID int64
	send := func(event string, data any) (int64, error) {
		payload, err := json.Marshal(data)
		if err != nil {
			return 0, fmt.Errorf("marshal %s: %w", event, err)
		}
		nextID++
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: event, ID: nextID, Data: payload}); err != nil {
			return 0, fmt.Errorf("send %s: %w", event, err)
		}
		return nextID, nil
	}

	// awaitAck prints frames until the ack for id arrives.
	awaitAck := func(id int64) (proto.AckData, error) {
		for {
			var f frame
			if err := wsjson.Read(ctx, conn, &f); err != nil {
				return proto.AckData{}, fmt.Errorf("read: %w", err)
			}
			switch f.Type {
			case proto.OutboundTypeAck:
				var ack proto.AckData
				if err := json.Unmarshal(f.Data, &ack); err != nil {
					return proto.AckData{}, fmt.Errorf("unmarshal ack: %w", err)
				}
				fmt.Printf("ack id=%d status=%s users=%v message=%q\n", f.ID, ack.Status, ack.Users, ack.Message)
				if f.ID == id {
					return ack, nil
				}
			case proto.OutboundTypeError:
				return proto.AckData{}, fmt.Errorf("server error: %s: %s", f.Error.Code, f.Error.Msg)
			default:
				fmt.Printf("event=%s data=%s\n", f.Event, string(f.Data))
			}
		}
	}

	id, err := send(proto.InboundTypeJoin, proto.JoinData{Username: *user, Room: *room})
	if err != nil {
		return err
	}
	if ack, err := awaitAck(id); err != nil {
		return err
	} else if ack.Status != "ok" {
		return fmt.Errorf("join rejected: %s", ack.Message)
	}

	id, err = send(proto.InboundTypeMessage, proto.MessageData{Text: *text})
	if err != nil {
		return err
	}
	if ack, err := awaitAck(id); err != nil {
		return err
	} else if ack.Status != "ok" {
		return fmt.Errorf("message rejected: %s", ack.Message)
	}

	id, err = send(proto.InboundTypeLeave, struct{}{})
	if err != nil {
		return err
	}
	_, err = awaitAck(id)
	return err
}
