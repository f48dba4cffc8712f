package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/diagramhub/internal/proto"
)

const usage = `commands:
  lock <element_id>
  unlock <element_id>
  update <path to .bpmn file>`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_console: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "ws://localhost:8080/ws/diagram", "WebSocket base address")
	room := flag.String("room", "general", "room to join")
	token := flag.String("token", "", "JWT passed as ?token= when the server requires one")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
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

	fmt.Printf("Connected to room %s\n%s\n", *room, usage)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var raw json.RawMessage
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		var env proto.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("decode envelope: %v", err)
			continue
		}

		switch env.Type {
		case proto.OutboundTypeInit:
			var evt proto.Init
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal init: %v", err)
				continue
			}
			fmt.Printf("joined as %s, %d online, %d locks, document %d bytes\n",
				evt.SelfID, evt.UsersCount, len(evt.Locks), len(evt.BPMNXML))
		case proto.OutboundTypeDiagramUpdate:
			var evt proto.DiagramUpdate
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal diagram_update: %v", err)
				continue
			}
			fmt.Printf("%s updated the diagram (%d bytes)\n", evt.UserID, len(evt.BPMNXML))
		case proto.OutboundTypeUsers:
			var evt proto.Users
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal users: %v", err)
				continue
			}
			fmt.Printf("%d online\n", evt.UsersCount)
		case proto.OutboundTypeLock:
			var evt proto.Lock
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal lock: %v", err)
				continue
			}
			fmt.Printf("%s locked %s\n", evt.UserID, evt.ElementID)
		case proto.OutboundTypeUnlock:
			var evt proto.Unlock
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal unlock: %v", err)
				continue
			}
			fmt.Printf("%s unlocked\n", evt.ElementID)
		case proto.OutboundTypeBulkUnlock:
			var evt proto.BulkUnlock
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal bulk_unlock: %v", err)
				continue
			}
			fmt.Printf("released: %s\n", strings.Join(evt.ElementIDs, ", "))
		default:
			fmt.Printf("%s\n", raw)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			msg, err := parseLine(line)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if msg == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func parseLine(line string) (*proto.Inbound, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	if len(fields) != 2 {
		return nil, errors.New(usage)
	}

	switch fields[0] {
	case "lock":
		return &proto.Inbound{Type: proto.InboundTypeLockElement, ElementID: fields[1]}, nil
	case "unlock":
		return &proto.Inbound{Type: proto.InboundTypeUnlockElement, ElementID: fields[1]}, nil
	case "update":
		data, err := os.ReadFile(fields[1])
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fields[1], err)
		}
		return &proto.Inbound{Type: proto.InboundTypeUpdateDiagram, BPMNXML: string(data)}, nil
	default:
		return nil, errors.New(usage)
	}
}
