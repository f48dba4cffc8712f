package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventInit delivers the room snapshot to a participant that just joined.
	EventInit EventKind = iota
	// EventDiagramUpdate notifies the room about an accepted document update.
	EventDiagramUpdate
	// EventUsers notifies the room about the current participant count.
	EventUsers
	// EventLock notifies the room that an element was locked.
	EventLock
	// EventUnlock notifies the room that an element was explicitly unlocked.
	EventUnlock
	// EventBulkUnlock notifies the room about locks released by a departed participant.
	EventBulkUnlock
)

func (k EventKind) String() string {
	switch k {
	case EventInit:
		return "init"
	case EventDiagramUpdate:
		return "diagram_update"
	case EventUsers:
		return "users"
	case EventLock:
		return "lock"
	case EventUnlock:
		return "unlock"
	case EventBulkUnlock:
		return "bulk_unlock"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in a room.
// Events are shared between subscribers and must not be modified after publishing.
type Event struct {
	Kind       EventKind
	Room       string
	SelfID     string            // EventInit
	Document   string            // EventInit, EventDiagramUpdate
	UserID     string            // EventDiagramUpdate, EventLock
	UsersCount int               // EventInit, EventUsers
	Locks      map[string]string // EventInit, EventDiagramUpdate
	ElementID  string            // EventLock, EventUnlock
	ElementIDs []string          // EventBulkUnlock
}
