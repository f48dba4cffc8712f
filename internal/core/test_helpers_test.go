package core

import (
	"testing"
	"time"
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
			t.Fatalf("expected event %v, got %v: %+v", kind, ev.Kind, ev)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v: %+v", ev.Kind, ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestRegistry(t *testing.T, cfg RegistryConfig) (*Registry, *Hub) {
	t.Helper()

	hub := NewHub(nil, nil)
	return NewRegistry(hub, cfg, nil, nil), hub
}

func openSession(t *testing.T, reg *Registry, room, id string) *Session {
	t.Helper()

	s := NewSession(reg, room, NewClient(id, 16), nil, nil)
	if err := s.Open(); err != nil {
		t.Fatalf("open session %s: %v", id, err)
	}
	t.Cleanup(s.Close)
	return s
}
