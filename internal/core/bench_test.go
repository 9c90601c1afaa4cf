package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	sender := NewClient("sender", 8)
	hub.RegisterClient(sender)
	if _, err := hub.Handle(ctx, sender.ID, JoinRequest{Username: "sender", Room: "bench"}); err != nil {
		b.Fatalf("join: %v", err)
	}

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), 1024)
		hub.RegisterClient(c)
		if _, err := hub.Handle(ctx, c.ID, JoinRequest{Username: "client", Room: "bench"}); err != nil {
			b.Fatalf("join: %v", err)
		}
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid dropped events.
	target := clients[0]
	drain(target.Events)
	for _, c := range append(clients[1:], sender) {
		go func(cl *Client) {
			for {
				select {
				case <-cl.Events:
				case <-ctx.Done():
					return
				}
			}
		}(c)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := hub.Handle(ctx, sender.ID, MessageRequest{Text: "payload"}); err != nil {
			b.Fatalf("message: %v", err)
		}
		<-target.Events
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
