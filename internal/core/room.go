package core

import (
	"slices"
	"sync"
	"time"
)

// Snapshot is the room state handed to a participant when it joins.
type Snapshot struct {
	Document   string
	UsersCount int
	Locks      map[string]string
}

// RoomStats summarizes a room for introspection.
type RoomStats struct {
	Name          string `json:"name"`
	UsersCount    int    `json:"users_count"`
	LocksCount    int    `json:"locks_count"`
	DocumentBytes int    `json:"document_bytes"`
}

// Room is the authoritative state of one diagram.
//
// State changes happen under mu. Before mu is released the mutation takes
// order, and holds it while its events are published, so every participant
// observes events in the order the mutations were applied. Publishing never
// blocks on the network.
type Room struct {
	name string
	hub  Broadcaster
	obs  Observer
	now  func() time.Time

	mu           sync.Mutex
	document     string
	participants map[string]struct{}
	locks        map[string]string
	emptySince   time.Time
	closed       bool

	order sync.Mutex
}

// NewRoom constructs a room holding document with no participants.
// hub may be nil, in which case mutations publish nothing.
func NewRoom(name, document string, hub Broadcaster, obs Observer) *Room {
	return newRoom(name, document, hub, obs, time.Now)
}

func newRoom(name, document string, hub Broadcaster, obs Observer, now func() time.Time) *Room {
	return &Room{
		name:         name,
		hub:          hub,
		obs:          observerOrNop(obs),
		now:          now,
		document:     document,
		participants: make(map[string]struct{}),
		locks:        make(map[string]string),
		emptySince:   now(),
	}
}

// Name returns the registry key of the room.
func (r *Room) Name() string {
	return r.name
}

// Join adds sub as a participant, subscribes it to room broadcasts, sends it
// an init event and announces the new participant count to the room.
func (r *Room) Join(sub Subscriber) (Snapshot, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Snapshot{}, ErrRoomClosed
	}
	r.participants[sub.ID()] = struct{}{}
	snap := Snapshot{
		Document:   r.document,
		UsersCount: len(r.participants),
		Locks:      r.copyLocks(),
	}
	r.order.Lock()
	r.mu.Unlock()
	defer r.order.Unlock()

	r.obs.ParticipantJoined(r.name)
	if r.hub != nil {
		r.hub.Subscribe(r.name, sub)
	}
	sub.Deliver(&Event{
		Kind:       EventInit,
		Room:       r.name,
		SelfID:     sub.ID(),
		Document:   snap.Document,
		UsersCount: snap.UsersCount,
		Locks:      snap.Locks,
	})
	r.publish(&Event{Kind: EventUsers, Room: r.name, UsersCount: snap.UsersCount})

	return snap, nil
}

// Leave removes sub and every lock it holds, unsubscribes it and notifies the
// remaining participants. Released element ids are returned sorted. Calling
// Leave for an absent participant is a no-op.
func (r *Room) Leave(sub Subscriber) ([]string, int) {
	id := sub.ID()

	r.mu.Lock()
	if _, ok := r.participants[id]; !ok {
		count := len(r.participants)
		r.mu.Unlock()
		if r.hub != nil {
			r.hub.Unsubscribe(r.name, sub)
		}
		return nil, count
	}
	delete(r.participants, id)
	var released []string
	for elementID, holder := range r.locks {
		if holder == id {
			released = append(released, elementID)
			delete(r.locks, elementID)
		}
	}
	slices.Sort(released)
	count := len(r.participants)
	if count == 0 {
		r.emptySince = r.now()
	}
	r.order.Lock()
	r.mu.Unlock()
	defer r.order.Unlock()

	r.obs.ParticipantLeft(r.name)
	if r.hub != nil {
		r.hub.Unsubscribe(r.name, sub)
	}
	if len(released) > 0 {
		r.publish(&Event{Kind: EventBulkUnlock, Room: r.name, ElementIDs: released})
	}
	r.publish(&Event{Kind: EventUsers, Room: r.name, UsersCount: count})

	return released, count
}

// UpdateDocument replaces the document wholesale (last write wins) and
// broadcasts it together with the current locks. An empty document is
// rejected without any broadcast.
func (r *Room) UpdateDocument(document, by string) (map[string]string, bool) {
	if document == "" {
		return nil, false
	}

	r.mu.Lock()
	r.document = document
	locks := r.copyLocks()
	r.order.Lock()
	r.mu.Unlock()
	defer r.order.Unlock()

	r.publish(&Event{
		Kind:     EventDiagramUpdate,
		Room:     r.name,
		Document: document,
		UserID:   by,
		Locks:    locks,
	})
	return locks, true
}

// Lock grants the element lock to participant, replacing any previous holder.
func (r *Room) Lock(elementID, participant string) bool {
	if elementID == "" {
		return false
	}

	r.mu.Lock()
	r.locks[elementID] = participant
	r.order.Lock()
	r.mu.Unlock()
	defer r.order.Unlock()

	r.publish(&Event{Kind: EventLock, Room: r.name, ElementID: elementID, UserID: participant})
	return true
}

// Unlock releases the element lock only if participant currently holds it.
func (r *Room) Unlock(elementID, participant string) bool {
	if elementID == "" {
		return false
	}

	r.mu.Lock()
	if holder, ok := r.locks[elementID]; !ok || holder != participant {
		r.mu.Unlock()
		return false
	}
	delete(r.locks, elementID)
	r.order.Lock()
	r.mu.Unlock()
	defer r.order.Unlock()

	r.publish(&Event{Kind: EventUnlock, Room: r.name, ElementID: elementID})
	return true
}

// Document returns the current document.
func (r *Room) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.document
}

// Locks returns a copy of the lock map.
func (r *Room) Locks() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyLocks()
}

// Stats returns a point-in-time summary of the room.
func (r *Room) Stats() RoomStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomStats{
		Name:          r.name,
		UsersCount:    len(r.participants),
		LocksCount:    len(r.locks),
		DocumentBytes: len(r.document),
	}
}

// idleSince reports when the room became empty; ok is false while it has
// participants or after it was closed.
func (r *Room) idleSince() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.participants) > 0 {
		return time.Time{}, false
	}
	return r.emptySince, true
}

// closeIfIdle marks the room closed when it has had no participants since
// before cutoff. A zero cutoff closes any empty room.
func (r *Room) closeIfIdle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.participants) > 0 {
		return false
	}
	if !cutoff.IsZero() && r.emptySince.After(cutoff) {
		return false
	}
	r.closed = true
	return true
}

func (r *Room) publish(ev *Event) {
	if r.hub == nil {
		return
	}
	r.hub.Publish(r.name, ev)
}

// copyLocks must be called with mu held.
func (r *Room) copyLocks() map[string]string {
	locks := make(map[string]string, len(r.locks))
	for elementID, holder := range r.locks {
		locks[elementID] = holder
	}
	return locks
}
