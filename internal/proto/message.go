package proto

// Inbound is a message coming from the client. Fields not used by the
// message type are left empty.
type Inbound struct {
	Type      string `json:"type"`
	BPMNXML   string `json:"bpmn_xml,omitempty"`
	ElementID string `json:"element_id,omitempty"`
}

const (
	InboundTypeUpdateDiagram = "update_diagram"
	InboundTypeLockElement   = "lock_element"
	InboundTypeUnlockElement = "unlock_element"

	OutboundTypeInit          = "init"
	OutboundTypeDiagramUpdate = "diagram_update"
	OutboundTypeUsers         = "users"
	OutboundTypeLock          = "lock"
	OutboundTypeUnlock        = "unlock"
	OutboundTypeBulkUnlock    = "bulk_unlock"
)

// Init is sent once to a participant after it joins a room.
type Init struct {
	Type       string            `json:"type"`
	SelfID     string            `json:"self_id"`
	BPMNXML    string            `json:"bpmn_xml"`
	UsersCount int               `json:"users_count"`
	Locks      map[string]string `json:"locks"`
}

// DiagramUpdate carries the full document after an accepted update.
type DiagramUpdate struct {
	Type    string            `json:"type"`
	BPMNXML string            `json:"bpmn_xml"`
	UserID  string            `json:"user_id"`
	Locks   map[string]string `json:"locks"`
}

// Users reports the live participant count of the room.
type Users struct {
	Type       string `json:"type"`
	UsersCount int    `json:"users_count"`
}

// Lock announces a lock grant.
type Lock struct {
	Type      string `json:"type"`
	ElementID string `json:"element_id"`
	UserID    string `json:"user_id"`
}

// Unlock announces an explicit lock release.
type Unlock struct {
	Type      string `json:"type"`
	ElementID string `json:"element_id"`
}

// BulkUnlock lists locks released when a participant disconnected.
type BulkUnlock struct {
	Type       string   `json:"type"`
	ElementIDs []string `json:"element_ids"`
}

// Envelope is enough of any message to read its type.
type Envelope struct {
	Type string `json:"type"`
}
