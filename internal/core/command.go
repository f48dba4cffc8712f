package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandUnknown is any inbound message the core does not understand.
	CommandUnknown CommandKind = iota
	// CommandUpdateDiagram replaces the room document.
	CommandUpdateDiagram
	// CommandLockElement acquires (or steals) the lock on an element.
	CommandLockElement
	// CommandUnlockElement releases a lock held by the sender.
	CommandUnlockElement
)

func (k CommandKind) String() string {
	switch k {
	case CommandUpdateDiagram:
		return "update_diagram"
	case CommandLockElement:
		return "lock_element"
	case CommandUnlockElement:
		return "unlock_element"
	default:
		return "unknown"
	}
}

// Command represents an action requested by a client.
type Command struct {
	Kind      CommandKind
	Document  string
	ElementID string
}
