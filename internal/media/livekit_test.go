package media

import (
	"context"
	"testing"

	"github.com/livekit/protocol/auth"
)

func TestJoinInfoSignsRoomScopedToken(t *testing.T) {
	engine := New("api-key", "api-secret", "ws://media.local:7880")

	info, err := engine.JoinInfo(context.Background(), "prayer-1", "alice", "Alice")
	if err != nil {
		t.Fatalf("join info: %v", err)
	}
	if info.URL != "ws://media.local:7880" {
		t.Fatalf("unexpected url: %s", info.URL)
	}
	if info.RoomName != MediaRoomName("prayer-1") {
		t.Fatalf("unexpected room name: %s", info.RoomName)
	}
	if info.Identity != "alice" {
		t.Fatalf("unexpected identity: %s", info.Identity)
	}

	verifier, err := auth.ParseAPIToken(info.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	grants, err := verifier.Verify("api-secret")
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if grants.Video == nil || !grants.Video.RoomJoin || grants.Video.Room != info.RoomName {
		t.Fatalf("unexpected grants: %+v", grants.Video)
	}
	if grants.Identity != "alice" {
		t.Fatalf("unexpected token identity: %s", grants.Identity)
	}
}
