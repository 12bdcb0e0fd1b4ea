package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents an account known to the token-issuing API. The gateway
// itself never reads users; it only verifies the tokens minted for them.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsGuest      bool
	CreatedAt    time.Time
}

// RoomMessage is a persisted room chat message.
type RoomMessage struct {
	ID        int64
	RoomID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// UserStore persists accounts for the token-issuing API.
type UserStore interface {
	CreateUser(ctx context.Context, id, username, passwordHash string, isGuest bool) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// MessageStore persists room chat history.
type MessageStore interface {
	SaveRoomMessage(ctx context.Context, msg RoomMessage) error
	RecentRoomMessages(ctx context.Context, roomID string, limit int) ([]RoomMessage, error)
}

// Store combines all persistence used by the gateway.
type Store interface {
	UserStore
	MessageStore
	Close() error
}
