package http

import (
	"encoding/json"

	"github.com/vovakirdan/diagramhub/internal/core"
	"github.com/vovakirdan/diagramhub/internal/proto"
)

// decodeInbound parses a text frame into a command. Unparseable payloads and
// unknown types map to CommandUnknown, which the session ignores.
func decodeInbound(data []byte) (core.Command, error) {
	var inbound proto.Inbound
	if err := json.Unmarshal(data, &inbound); err != nil {
		return core.Command{Kind: core.CommandUnknown}, err
	}
	return inboundToCommand(inbound), nil
}

func inboundToCommand(inbound proto.Inbound) core.Command {
	switch inbound.Type {
	case proto.InboundTypeUpdateDiagram:
		return core.Command{Kind: core.CommandUpdateDiagram, Document: inbound.BPMNXML}
	case proto.InboundTypeLockElement:
		return core.Command{Kind: core.CommandLockElement, ElementID: inbound.ElementID}
	case proto.InboundTypeUnlockElement:
		return core.Command{Kind: core.CommandUnlockElement, ElementID: inbound.ElementID}
	default:
		return core.Command{Kind: core.CommandUnknown}
	}
}

func outboundFromEvent(event *core.Event) any {
	switch event.Kind {
	case core.EventInit:
		return proto.Init{
			Type:       proto.OutboundTypeInit,
			SelfID:     event.SelfID,
			BPMNXML:    event.Document,
			UsersCount: event.UsersCount,
			Locks:      nonNilLocks(event.Locks),
		}
	case core.EventDiagramUpdate:
		return proto.DiagramUpdate{
			Type:    proto.OutboundTypeDiagramUpdate,
			BPMNXML: event.Document,
			UserID:  event.UserID,
			Locks:   nonNilLocks(event.Locks),
		}
	case core.EventUsers:
		return proto.Users{Type: proto.OutboundTypeUsers, UsersCount: event.UsersCount}
	case core.EventLock:
		return proto.Lock{Type: proto.OutboundTypeLock, ElementID: event.ElementID, UserID: event.UserID}
	case core.EventUnlock:
		return proto.Unlock{Type: proto.OutboundTypeUnlock, ElementID: event.ElementID}
	case core.EventBulkUnlock:
		ids := event.ElementIDs
		if ids == nil {
			ids = []string{}
		}
		return proto.BulkUnlock{Type: proto.OutboundTypeBulkUnlock, ElementIDs: ids}
	default:
		return nil
	}
}

func nonNilLocks(locks map[string]string) map[string]string {
	if locks == nil {
		return map[string]string{}
	}
	return locks
}
