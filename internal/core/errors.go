package core

import "errors"

var (
	// ErrRoomClosed is returned when joining a room the registry already evicted.
	ErrRoomClosed = errors.New("room closed")
	// ErrTooManyRooms is returned when the room cap is reached and nothing can be evicted.
	ErrTooManyRooms = errors.New("too many rooms")
	// ErrSlowConsumer marks a client whose outbound queue overflowed.
	ErrSlowConsumer = errors.New("slow consumer")
	// ErrSessionClosed marks a client whose session ended normally.
	ErrSessionClosed = errors.New("session closed")
	// ErrSessionState is returned when a session is opened twice.
	ErrSessionState = errors.New("session not in connecting state")
)
