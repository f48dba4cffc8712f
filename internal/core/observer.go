package core

// Observer receives notifications about core activity, typically for metrics.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	RoomCreated(room string)
	RoomEvicted(room string)
	ParticipantJoined(room string)
	ParticipantLeft(room string)
	CommandHandled(kind CommandKind, accepted bool)
	EventPublished(kind EventKind, recipients int)
	SubscriberDropped(room string)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) RoomCreated(string) {}
func (NopObserver) RoomEvicted(string) {}
func (NopObserver) ParticipantJoined(string) {}
func (NopObserver) ParticipantLeft(string) {}
func (NopObserver) CommandHandled(CommandKind, bool) {}
func (NopObserver) EventPublished(EventKind, int) {}
func (NopObserver) SubscriberDropped(string) {}

func observerOrNop(obs Observer) Observer {
	if obs == nil {
		return NopObserver{}
	}
	return obs
}
