package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koinonia-app/rooms-gateway/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, "u-1", "alice", "hash", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID != "u-1" || created.Username != "alice" || created.IsGuest {
		t.Fatalf("unexpected user: %+v", created)
	}

	got, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.ID != "u-1" {
		t.Fatalf("unexpected user id: %s", got.ID)
	}
}

func TestGetUnknownUserReturnsNotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateUsernameFails(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "u-1", "alice", "hash", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := st.CreateUser(ctx, "u-2", "alice", "hash", false); err == nil {
		t.Fatalf("expected unique constraint error")
	}
}

func TestRecentRoomMessagesChronologicalAndLimited(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		err := st.SaveRoomMessage(ctx, store.RoomMessage{
			RoomID:    "prayer-1",
			SenderID:  "alice",
			Content:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("save message %d: %v", i, err)
		}
	}

	messages, err := st.RecentRoomMessages(ctx, "prayer-1", 3)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	// Last three, oldest first.
	if messages[0].Content != "c" || messages[2].Content != "e" {
		t.Fatalf("unexpected order: %q %q %q", messages[0].Content, messages[1].Content, messages[2].Content)
	}
}

func TestRecentRoomMessagesScopedToRoom(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_ = st.SaveRoomMessage(ctx, store.RoomMessage{RoomID: "a", SenderID: "x", Content: "one", CreatedAt: time.Now()})
	_ = st.SaveRoomMessage(ctx, store.RoomMessage{RoomID: "b", SenderID: "x", Content: "two", CreatedAt: time.Now()})

	messages, err := st.RecentRoomMessages(ctx, "a", 10)
	if err != nil {
		t.Fatalf("recent messages: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "one" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
}
