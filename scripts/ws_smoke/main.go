package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/diagramhub/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "ws://localhost:8080/ws/diagram", "WebSocket base address")
	room := flag.String("room", "smoke", "room name")
	element := flag.String("element", "Task_1", "element id to lock and unlock")
	token := flag.String("token", "", "JWT passed as ?token= when the server requires one")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	url := *base + "/" + *room + "/"
	if *token != "" {
		url += "?token=" + *token
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	var init proto.Init
	if err := expect(ctx, conn, proto.OutboundTypeInit, &init); err != nil {
		return err
	}
	fmt.Printf("init: self_id=%s users=%d locks=%d document=%d bytes\n",
		init.SelfID, init.UsersCount, len(init.Locks), len(init.BPMNXML))

	steps := []struct {
		send proto.Inbound
		want string
	}{
		{proto.Inbound{Type: proto.InboundTypeLockElement, ElementID: *element}, proto.OutboundTypeLock},
		{proto.Inbound{Type: proto.InboundTypeUpdateDiagram, BPMNXML: init.BPMNXML}, proto.OutboundTypeDiagramUpdate},
		{proto.Inbound{Type: proto.InboundTypeUnlockElement, ElementID: *element}, proto.OutboundTypeUnlock},
	}

	for _, step := range steps {
		if err := wsjson.Write(ctx, conn, step.send); err != nil {
			return fmt.Errorf("send %s: %w", step.send.Type, err)
		}
		if err := expect(ctx, conn, step.want, nil); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", step.send.Type, step.want)
	}

	return nil
}

// expect reads until a message of type want arrives. Presence updates from
// other participants are printed and skipped.
func expect(ctx context.Context, conn *websocket.Conn, want string, out any) error {
	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			return fmt.Errorf("read %s: %w", want, err)
		}

		var env proto.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode envelope: %w", err)
		}
		if env.Type != want {
			fmt.Printf("skipped: %s\n", raw)
			continue
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s: %w", want, err)
		}
		return nil
	}
}
