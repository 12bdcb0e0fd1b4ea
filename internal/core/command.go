package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the connection to a room.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the connection from a room.
	CommandLeaveRoom
	// CommandRoomMessage delivers a chat message to room members.
	CommandRoomMessage
	// CommandDirectMessage relays a message to a user's live connections.
	CommandDirectMessage
	// CommandToggleHand flips the sender's hand-raised flag in a room.
	CommandToggleHand
	// CommandToggleMute flips the sender's muted flag in a room.
	CommandToggleMute
	// CommandContentChange fans out a cache-invalidation signal globally.
	CommandContentChange
	// CommandMediaJoin requests media-session credentials for a room.
	CommandMediaJoin
)

// Command represents an action requested by a connection.
type Command struct {
	Kind        CommandKind
	Room        string
	Recipient   string // direct message target user id
	Content     string
	ContentType string // changed entity type for content changes
	ContentID   string // changed entity id for content changes
}
