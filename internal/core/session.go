package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// SessionState is the lifecycle state of a connection.
type SessionState int

const (
	// StateConnecting is the state before the client is bound to its room.
	StateConnecting SessionState = iota
	// StateActive means the client is joined and commands are applied.
	StateActive
	// StateClosed is terminal.
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session binds one client to one room and applies its commands.
// Handle and Close are serialized, so no command is applied after the
// participant has left the room.
type Session struct {
	registry *Registry
	roomName string
	client   *Client
	obs      Observer
	log      zerolog.Logger

	mu    sync.Mutex
	state SessionState
	room  *Room
}

// NewSession prepares a session for client in the named room.
func NewSession(registry *Registry, roomName string, client *Client, obs Observer, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Session{
		registry: registry,
		roomName: roomName,
		client:   client,
		obs:      observerOrNop(obs),
		log:      logger.With().Str("room", roomName).Str("participant", client.ID()).Logger(),
	}
}

// Client returns the client bound to the session.
func (s *Session) Client() *Client {
	return s.client
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open joins the room. On success the client has an init event queued and
// the room has been told about the new participant count.
func (s *Session) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateConnecting {
		return ErrSessionState
	}

	room, snap, err := s.registry.Join(s.roomName, s.client)
	if err != nil {
		s.state = StateClosed
		s.client.Evict(err)
		return fmt.Errorf("join room %q: %w", s.roomName, err)
	}

	s.room = room
	s.state = StateActive
	s.log.Info().Int("users_count", snap.UsersCount).Msg("participant joined")
	return nil
}

// Handle applies a client command. Commands arriving outside the active
// state, unknown kinds and commands missing required fields are ignored.
func (s *Session) Handle(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return
	}

	id := s.client.ID()
	var accepted bool

	switch cmd.Kind {
	case CommandUpdateDiagram:
		_, accepted = s.room.UpdateDocument(cmd.Document, id)
	case CommandLockElement:
		accepted = s.room.Lock(cmd.ElementID, id)
	case CommandUnlockElement:
		accepted = s.room.Unlock(cmd.ElementID, id)
	default:
		s.log.Debug().Int("kind", int(cmd.Kind)).Msg("ignoring unknown command")
		return
	}

	s.obs.CommandHandled(cmd.Kind, accepted)
	if !accepted {
		s.log.Debug().Str("command", cmd.Kind.String()).Str("element_id", cmd.ElementID).Msg("command rejected")
	}
}

// Close leaves the room, releasing the participant's locks and notifying the
// remaining participants. It is safe to call more than once and from any
// goroutine; only the first call has an effect.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	if prev == StateClosed {
		return
	}
	s.state = StateClosed

	// The client stays deliverable until it is unsubscribed, otherwise a
	// concurrent publish would count it as a slow consumer.
	if prev == StateActive {
		released, count := s.room.Leave(s.client)
		s.log.Info().
			Int("released_locks", len(released)).
			Int("users_count", count).
			Msg("participant left")
	}
	s.client.Evict(ErrSessionClosed)
}
