package core

import (
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	hub := NewHub(nil, nil)
	reg := NewRegistry(hub, RegistryConfig{DefaultDocument: "<doc/>"}, nil, nil)

	sender := NewSession(reg, "bench", NewClient("sender", 1024), nil, nil)
	if err := sender.Open(); err != nil {
		b.Fatalf("open sender: %v", err)
	}
	defer sender.Close()
	go func() {
		for range sender.Client().Events() {
		}
	}()

	sessions := make([]*Session, 0, recipients)
	for i := range recipients {
		s := NewSession(reg, "bench", NewClient(fmt.Sprintf("c%d", i), 1024), nil, nil)
		if err := s.Open(); err != nil {
			b.Fatalf("open recipient: %v", err)
		}
		sessions = append(sessions, s)
	}
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	// Drain events for all but the first recipient to avoid queue overflow.
	target := sessions[0].Client()
	for _, s := range sessions[1:] {
		go func(cl *Client) {
			for range cl.Events() {
			}
		}(s.Client())
	}
	for len(target.Events()) > 0 {
		<-target.Events()
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Handle(Command{Kind: CommandLockElement, ElementID: "Task_1"})
		<-target.Events()
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
