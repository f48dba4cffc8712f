package core

import (
	"sync"

	"github.com/rs/zerolog"
)

// Broadcaster fans room events out to subscribers. Room depends on this
// interface; Hub is the in-process implementation.
type Broadcaster interface {
	Subscribe(room string, sub Subscriber)
	Unsubscribe(room string, sub Subscriber)
	Publish(room string, ev *Event) int
}

// topic is the subscriber list of a single room.
type topic struct {
	mu   sync.Mutex
	subs map[string]Subscriber
}

// Hub keeps per-room subscriber lists and delivers events to them.
// The topic map is only written on the first subscribe and the last
// unsubscribe of a room; publishing takes the read lock and the room's own
// topic lock.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]*topic
	obs    Observer
	log    *zerolog.Logger
}

// NewHub creates an empty hub. obs and logger may be nil.
func NewHub(obs Observer, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		topics: make(map[string]*topic),
		obs:    observerOrNop(obs),
		log:    logger,
	}
}

// Subscribe adds sub to the room. Subscribing twice replaces the previous
// entry for the same participant id.
func (h *Hub) Subscribe(room string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[room]
	if !ok {
		t = &topic{subs: make(map[string]Subscriber)}
		h.topics[room] = t
	}
	t.mu.Lock()
	t.subs[sub.ID()] = sub
	t.mu.Unlock()
}

// Unsubscribe removes sub from the room. Unknown subscribers are ignored.
func (h *Hub) Unsubscribe(room string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.topics[room]
	if !ok {
		return
	}
	t.mu.Lock()
	if cur, exists := t.subs[sub.ID()]; exists && cur == sub {
		delete(t.subs, sub.ID())
	}
	empty := len(t.subs) == 0
	t.mu.Unlock()

	if empty {
		delete(h.topics, room)
	}
}

// Publish delivers ev to every subscriber of the room, the sender included,
// and returns the number of subscribers that accepted it. A subscriber whose
// queue is full is dropped from the room and evicted with ErrSlowConsumer so
// that it cannot hold up the others.
func (h *Hub) Publish(room string, ev *Event) int {
	h.mu.RLock()
	t, ok := h.topics[room]
	h.mu.RUnlock()
	if !ok {
		h.obs.EventPublished(ev.Kind, 0)
		return 0
	}

	var dropped []Subscriber
	delivered := 0

	t.mu.Lock()
	for id, sub := range t.subs {
		if sub.Deliver(ev) {
			delivered++
			continue
		}
		delete(t.subs, id)
		dropped = append(dropped, sub)
	}
	t.mu.Unlock()

	for _, sub := range dropped {
		h.log.Warn().
			Str("room", room).
			Str("participant", sub.ID()).
			Str("event", ev.Kind.String()).
			Msg("dropping slow consumer")
		h.obs.SubscriberDropped(room)
		sub.Evict(ErrSlowConsumer)
	}

	h.obs.EventPublished(ev.Kind, delivered)
	return delivered
}

// Subscribers returns the number of subscribers in the room.
func (h *Hub) Subscribers(room string) int {
	h.mu.RLock()
	t, ok := h.topics[room]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}
