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

	"github.com/koinonia-app/rooms-gateway/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "optional JWT; empty connects anonymously")
	room := flag.String("room", "general", "room to join")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(eventType string, payload any) error {
		data, marshalErr := json.Marshal(payload)
		if marshalErr != nil {
			return fmt.Errorf("marshal %s: %w", eventType, marshalErr)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: eventType, Data: data}); err != nil {
			return fmt.Errorf("send %s: %w", eventType, err)
		}
		return nil
	}

	if err := mustSend(proto.InboundRoomJoin, proto.RoomData{RoomID: *room}); err != nil {
		return err
	}
	if err := mustSend(proto.InboundRoomMessage, proto.RoomMessageData{RoomID: *room, Content: *text}); err != nil {
		return err
	}

	for {
		var raw struct {
			Type  string          `json:"type"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &raw); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received: type=%s\n", raw.Type)
		if raw.Error != nil {
			fmt.Printf("Error: %s: %s\n", raw.Error.Code, raw.Error.Msg)
		}

		switch raw.Type {
		case proto.OutboundRoomMessage:
			var msg proto.RoomMessage
			if err := json.Unmarshal(raw.Data, &msg); err != nil {
				fmt.Printf("Raw data: %s\n", string(raw.Data))
				return fmt.Errorf("unmarshal message: %w", err)
			}
			fmt.Printf("RoomMessage: room=%s sender=%s content=%q ts=%d\n", msg.RoomID, msg.SenderID, msg.Content, msg.Timestamp)
			return nil
		case proto.OutboundRoomParticipants:
			var roster proto.RoomParticipants
			if err := json.Unmarshal(raw.Data, &roster); err == nil {
				fmt.Printf("Roster: room=%s members=%d\n", roster.RoomID, len(roster.Participants))
			}
		case proto.OutboundUsersActive:
			var users []string
			if err := json.Unmarshal(raw.Data, &users); err == nil {
				fmt.Printf("Active users: %d\n", len(users))
			}
		default:
			// keep looping for the room message echo
		}
	}
}
