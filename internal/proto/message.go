package proto

import "encoding/json"

// Inbound is the envelope for events coming from the client. Type carries
// the event name and Data its payload; payloads are validated before they
// reach the hub.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	InboundRoomJoin      = "room:join"
	InboundRoomLeave     = "room:leave"
	InboundRoomMedia     = "room:media"
	InboundRoomMessage   = "message:room"
	InboundDirectMessage = "message:direct"
	InboundToggleHand    = "participant:toggleHand"
	InboundToggleMute    = "participant:toggleMute"
	InboundContentCreate = "content:create"
	InboundContentUpdate = "content:update"
	InboundContentDelete = "content:delete"
)

// Outbound event names.
const (
	OutboundRoomParticipants  = "room:participants"
	OutboundRoomMedia         = "room:media"
	OutboundRoomMessage       = "message:room"
	OutboundDirectMessage     = "message:direct"
	OutboundMessageHistory    = "message:history"
	OutboundParticipantStatus = "participant:status"
	OutboundContentUpdate     = "content:update"
	OutboundUsersActive       = "users:active"
	OutboundError             = "error"
)

// RoomData addresses a room-scoped request (join, leave, media, toggles).
type RoomData struct {
	RoomID string `json:"roomId"`
}

// RoomMessageData is a chat message sent into a room.
type RoomMessageData struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

// DirectMessageData is a 1:1 message relayed to a user's live connections.
type DirectMessageData struct {
	RecipientID string `json:"recipientId"`
	Content     string `json:"content"`
}

// ContentData identifies a changed content entity. It is an invalidation
// signal only; receivers re-fetch authoritative state elsewhere.
type ContentData struct {
	Type string    `json:"type"`
	ID   ContentID `json:"id"`
}

// ContentID accepts either a JSON string or a JSON number on the wire;
// numerically-keyed entities send ids like 42. Normalized to a string.
type ContentID string

func (id *ContentID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ContentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ContentID(n.String())
	return nil
}

// Outbound is the envelope for events sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Participant is one roster entry.
type Participant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	HandRaised      bool   `json:"handRaised"`
	Muted           bool   `json:"muted"`
}

// RoomParticipants is the roster broadcast to a room after any membership
// or status change.
type RoomParticipants struct {
	RoomID       string        `json:"roomId"`
	Participants []Participant `json:"participants"`
}

// RoomMessage is a chat message fanned out to room members.
type RoomMessage struct {
	RoomID    string `json:"roomId"`
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// DirectMessage is a relayed 1:1 message.
type DirectMessage struct {
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// MessageHistory replays recent room messages to a joining connection.
type MessageHistory struct {
	RoomID   string        `json:"roomId"`
	Messages []RoomMessage `json:"messages"`
}

// ParticipantStatus announces a hand or mute toggle to a room.
type ParticipantStatus struct {
	RoomID        string `json:"roomId"`
	ParticipantID string `json:"participantId"`
	Status        string `json:"status"`
}

// MediaJoinInfo carries credentials for joining a room's media session.
type MediaJoinInfo struct {
	RoomID   string `json:"roomId"`
	URL      string `json:"url"`
	Token    string `json:"token"`
	RoomName string `json:"roomName"`
	Identity string `json:"identity"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
