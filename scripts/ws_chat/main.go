package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
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
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:5003/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	room := flag.String("room", "general", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	c := &client{conn: conn, user: *user}
	if err := c.send(ctx, proto.InboundTypeJoin, proto.JoinData{Username: *user, Room: *room}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println("Type messages and press Enter. /join <room>, /leave, Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	c.writeLoop(ctx)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

type client struct {
	conn   *websocket.Conn
	user   string
	nextID int64
}

func (c *client) send(ctx context.Context, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	c.nextID++
	if err := wsjson.Write(ctx, c.conn, proto.Inbound{Type: event, ID: c.nextID, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch {
		case f.Type == proto.OutboundTypeError && f.Error != nil:
			fmt.Printf("! %s\n", f.Error.Msg)
		case f.Type == proto.OutboundTypeAck:
			var ack proto.AckData
			if err := json.Unmarshal(f.Data, &ack); err != nil {
				log.Printf("unmarshal ack: %v", err)
				continue
			}
			if ack.Status != "ok" {
				fmt.Printf("! %s\n", ack.Message)
			}
		case f.Event == proto.EventNameMessage:
			var evt proto.EventMessage
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			stamp := evt.Time
			if t, err := time.Parse(proto.TimeLayout, evt.Time); err == nil {
				stamp = t.Local().Format(time.Kitchen)
			}
			if evt.System {
				fmt.Printf("%s * %s\n", stamp, evt.Text)
			} else {
				fmt.Printf("%s %s: %s\n", stamp, evt.User, evt.Text)
			}
		case f.Event == proto.EventNameRoomData:
			var evt proto.EventRoomData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal roomData: %v", err)
				continue
			}
			fmt.Printf("[%s] online: %s\n", evt.Room, strings.Join(evt.Users, ", "))
		}
	}
}

func (c *client) writeLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var err error
			switch {
			case strings.HasPrefix(text, "/join "):
				room := strings.TrimSpace(strings.TrimPrefix(text, "/join "))
				err = c.send(ctx, proto.InboundTypeJoin, proto.JoinData{Username: c.user, Room: room})
			case text == "/leave":
				err = c.send(ctx, proto.InboundTypeLeave, struct{}{})
			default:
				err = c.send(ctx, proto.InboundTypeMessage, proto.MessageData{Text: line})
			}
			if err != nil {
				log.Printf("%v", err)
				return
			}
		}
	}
}
