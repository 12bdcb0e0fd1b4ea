package core

import (
	"context"
	"time"
)

// EventKind is a notification the hub emits to connections.
type EventKind int

const (
	// EventRoomParticipants carries a room's recomputed roster.
	EventRoomParticipants EventKind = iota
	// EventRoomMessage carries a chat message to room members.
	EventRoomMessage
	// EventDirectMessage carries a relayed 1:1 message.
	EventDirectMessage
	// EventMessageHistory replays recent room messages to a joiner.
	EventMessageHistory
	// EventParticipantStatus announces a hand or mute toggle to a room.
	EventParticipantStatus
	// EventContentUpdate is a global cache-invalidation signal.
	EventContentUpdate
	// EventUsersActive carries the global presence snapshot.
	EventUsersActive
	// EventMediaJoinInfo delivers media-session credentials to a member.
	EventMediaJoinInfo
	// EventError notifies a connection about a domain error.
	EventError
)

// Participant status values announced on toggles.
const (
	StatusHandRaised  = "hand_raised"
	StatusHandLowered = "hand_lowered"
	StatusMuted       = "muted"
	StatusUnmuted     = "unmuted"
)

// Event is sent to connections to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Roster   []RosterEntry
	Message  Message
	Messages []Message // for EventMessageHistory
	Status   StatusChange
	Content  ContentChange
	Users    []string // for EventUsersActive, one entry per connection
	Media    *MediaJoinInfo
	Error    *CoreError
}

// RosterEntry is one display record in a room roster.
type RosterEntry struct {
	ID            string
	Name          string
	Authenticated bool
	HandRaised    bool
	Muted         bool
}

// Message is the domain model for a chat message. The timestamp is always
// server-assigned.
type Message struct {
	Room      string
	SenderID  string
	Content   string
	Timestamp time.Time
}

// StatusChange describes a participant status toggle.
type StatusChange struct {
	ParticipantID string
	Status        string
}

// ContentChange identifies a changed content entity.
type ContentChange struct {
	Type string
	ID   string
}

// MediaJoinInfo contains credentials for joining a room's media session.
type MediaJoinInfo struct {
	URL      string
	Token    string
	RoomName string
	Identity string
}

// MediaEngine issues credentials for joining a room's media session. The
// media transport itself lives outside the gateway.
type MediaEngine interface {
	JoinInfo(ctx context.Context, roomID, identity, name string) (*MediaJoinInfo, error)
}

// MessageStore persists room chat history so it can be replayed to late
// joiners. The hub runs fully in-memory when no store is configured.
type MessageStore interface {
	SaveRoomMessage(ctx context.Context, msg Message) error
	RecentRoomMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}
