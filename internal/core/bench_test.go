package core

import (
	"strconv"
	"testing"
)

func benchmarkGroupFanOut(b *testing.B, connections int) {
	registry := NewRegistry(ChannelChat, nil)

	clients := make([]*Client, 0, connections)
	for i := range connections {
		c := NewClient("c"+strconv.Itoa(i), Identity{UserID: 7, FirstName: "bench"}, 64)
		if _, err := registry.Join(c); err != nil {
			b.Fatalf("join: %v", err)
		}
		clients = append(clients, c)
	}

	// Drain every queue but the first so the loop waits on a single reader.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for {
				select {
				case <-cl.Events:
				case <-cl.Done():
					return
				}
			}
		}(c)
	}
	b.Cleanup(func() {
		for _, c := range clients {
			registry.Leave(c)
			c.Close()
		}
	})

	event := &Event{Kind: EventMessageRead, MessageID: 1}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		registry.SendToUser(7, event)
		<-target.Events
	}
}

func BenchmarkGroupFanOut_10(b *testing.B)  { benchmarkGroupFanOut(b, 10) }
func BenchmarkGroupFanOut_100(b *testing.B) { benchmarkGroupFanOut(b, 100) }
func BenchmarkGroupFanOut_500(b *testing.B) { benchmarkGroupFanOut(b, 500) }
