package core

import (
	"context"
	_ "embed"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDocument is served to every newly created room.
//
//go:embed default_document.bpmn
var DefaultDocument string

// RegistryConfig controls room creation and eviction.
type RegistryConfig struct {
	// DefaultDocument seeds new rooms. Empty means DefaultDocument.
	DefaultDocument string
	// IdleTTL is how long a room may stay without participants before Sweep
	// evicts it. Zero disables idle eviction.
	IdleTTL time.Duration
	// SweepInterval is the period of Run. Zero disables the sweeper.
	SweepInterval time.Duration
	// MaxRooms caps the number of live rooms. Zero means unlimited.
	MaxRooms int
}

// Registry maps room names to rooms. Rooms are created lazily; exactly one
// Room exists per name at any time.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	hub Broadcaster
	cfg RegistryConfig
	obs Observer
	log *zerolog.Logger
	now func() time.Time
}

// NewRegistry builds an empty registry publishing through hub.
func NewRegistry(hub Broadcaster, cfg RegistryConfig, obs Observer, logger *zerolog.Logger) *Registry {
	if cfg.DefaultDocument == "" {
		cfg.DefaultDocument = DefaultDocument
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		rooms: make(map[string]*Room),
		hub:   hub,
		cfg:   cfg,
		obs:   observerOrNop(obs),
		log:   logger,
		now:   time.Now,
	}
}

// GetOrCreate returns the room for name, creating it when missing.
func (g *Registry) GetOrCreate(name string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[name]; ok {
		return room, nil
	}

	if g.cfg.MaxRooms > 0 && len(g.rooms) >= g.cfg.MaxRooms {
		if !g.evictOldestLocked() {
			return nil, ErrTooManyRooms
		}
	}

	room := newRoom(name, g.cfg.DefaultDocument, g.hub, g.obs, g.now)
	g.rooms[name] = room
	g.obs.RoomCreated(name)
	g.log.Debug().Str("room", name).Msg("room created")
	return room, nil
}

// Join binds sub to the named room. If the room is evicted between lookup
// and join, a fresh room is created and the join retried.
func (g *Registry) Join(name string, sub Subscriber) (*Room, Snapshot, error) {
	for {
		room, err := g.GetOrCreate(name)
		if err != nil {
			return nil, Snapshot{}, err
		}
		snap, err := room.Join(sub)
		if errors.Is(err, ErrRoomClosed) {
			continue
		}
		if err != nil {
			return nil, Snapshot{}, err
		}
		return room, snap, nil
	}
}

// Lookup returns the room for name without creating it.
func (g *Registry) Lookup(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[name]
	return room, ok
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

// Rooms returns stats for every live room, sorted by name.
func (g *Registry) Rooms() []RoomStats {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	stats := make([]RoomStats, 0, len(rooms))
	for _, room := range rooms {
		stats = append(stats, room.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Sweep evicts rooms that have been empty for at least IdleTTL and returns
// how many were removed.
func (g *Registry) Sweep() int {
	if g.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := g.now().Add(-g.cfg.IdleTTL)

	g.mu.Lock()
	defer g.mu.Unlock()

	evicted := 0
	for name, room := range g.rooms {
		if room.closeIfIdle(cutoff) {
			g.removeLocked(name)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle rooms every SweepInterval until ctx is cancelled.
func (g *Registry) Run(ctx context.Context) {
	if g.cfg.SweepInterval <= 0 || g.cfg.IdleTTL <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(g.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := g.Sweep(); n > 0 {
				g.log.Info().Int("evicted", n).Int("rooms", g.Len()).Msg("idle rooms evicted")
			}
		case <-ctx.Done():
			return
		}
	}
}

// evictOldestLocked evicts the empty room that has been idle the longest.
// Must be called with mu held.
func (g *Registry) evictOldestLocked() bool {
	var (
		oldestName string
		oldestRoom *Room
		oldestAt   time.Time
	)
	for name, room := range g.rooms {
		since, ok := room.idleSince()
		if !ok {
			continue
		}
		if oldestRoom == nil || since.Before(oldestAt) {
			oldestName, oldestRoom, oldestAt = name, room, since
		}
	}
	if oldestRoom == nil || !oldestRoom.closeIfIdle(time.Time{}) {
		return false
	}
	g.removeLocked(oldestName)
	return true
}

func (g *Registry) removeLocked(name string) {
	delete(g.rooms, name)
	g.obs.RoomEvicted(name)
	g.log.Debug().Str("room", name).Msg("room evicted")
}
