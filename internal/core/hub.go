package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultHistoryLimit = 50

// HubOptions configures optional hub collaborators.
type HubOptions struct {
	// Store enables room message history when non-nil.
	Store MessageStore
	// Media enables media-join credentials when non-nil.
	Media MediaEngine
	// HistoryLimit caps how many messages are replayed on join.
	HistoryLimit int
}

// Hub owns the presence registry and room membership state. All mutations
// happen on the single Run goroutine; connection goroutines only exchange
// commands and events over channels, so hub state needs no locks.
type Hub struct {
	log   *zerolog.Logger
	store MessageStore
	media MediaEngine

	historyLimit int

	lifecycle chan lifecycleEvent
	commands  chan clientCommand

	// clients is the presence registry: connection-id -> client.
	clients map[string]*Client
	rooms   map[string]*Room

	activeConns   atomic.Int64
	activeRooms   atomic.Int64
	messagesIn    atomic.Int64
	eventsDropped atomic.Int64

	done chan struct{}
}

type clientCommand struct {
	client *Client
	cmd    *Command
}

// lifecycleEvent carries both registration and removal through one channel,
// so a connection's register and unregister are processed in the order the
// connection goroutine sent them. Separate channels would let the run loop
// pick the unregister first and leave a ghost in the presence registry.
type lifecycleEvent struct {
	client *Client
	leave  bool
}

// NewHub creates a hub. A nil logger disables logging.
func NewHub(logger *zerolog.Logger, opts HubOptions) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &Hub{
		log:          logger,
		store:        opts.Store,
		media:        opts.Media,
		historyLimit: limit,
		lifecycle:    make(chan lifecycleEvent, 32),
		commands:     make(chan clientCommand, 64),
		clients:      make(map[string]*Client),
		rooms:        make(map[string]*Room),
		done:         make(chan struct{}),
	}
}

// Run processes registrations and commands until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.lifecycle:
			if ev.leave {
				h.removeClient(ev.client)
			} else {
				h.addClient(ctx, ev.client)
			}
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		}
	}
}

// RegisterClient admits a connection into the presence registry.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.lifecycle <- lifecycleEvent{client: c}:
	case <-h.done:
	}
}

// UnregisterClient removes a connection; this is the authoritative cleanup
// trigger on transport disconnect, explicit leave or not.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.lifecycle <- lifecycleEvent{client: c, leave: true}:
	case <-h.done:
	}
}

func (h *Hub) addClient(ctx context.Context, c *Client) {
	if _, exists := h.clients[c.ID]; exists {
		return
	}
	h.clients[c.ID] = c
	h.activeConns.Store(int64(len(h.clients)))

	h.log.Info().
		Str("connection_id", c.ID).
		Str("user_id", c.UserID).
		Bool("authenticated", c.Authenticated).
		Msg("connection registered")

	go h.pump(ctx, c)
	h.broadcastPresence()
}

// pump forwards one connection's commands into the hub loop.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// removeClient performs the disconnect reconciliation in order: presence
// removal, room sweep with roster broadcasts, global presence snapshot.
func (h *Hub) removeClient(c *Client) {
	if _, exists := h.clients[c.ID]; !exists {
		return
	}
	delete(h.clients, c.ID)
	h.activeConns.Store(int64(len(h.clients)))

	for id, room := range h.rooms {
		if room.Remove(c) {
			h.dropEmptyRoom(id, room)
			h.broadcastRoster(room)
		}
	}

	h.broadcastPresence()
	close(c.Events)

	h.log.Info().
		Str("connection_id", c.ID).
		Str("user_id", c.UserID).
		Msg("connection removed")
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	if _, exists := h.clients[c.ID]; !exists {
		// Command raced with disconnect; state is already reconciled.
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.joinRoom(ctx, c, cmd.Room)
	case CommandLeaveRoom:
		h.leaveRoom(c, cmd.Room)
	case CommandRoomMessage:
		h.roomMessage(ctx, c, cmd.Room, cmd.Content)
	case CommandDirectMessage:
		h.directMessage(c, cmd.Recipient, cmd.Content)
	case CommandToggleHand:
		h.toggleStatus(c, cmd.Room, true)
	case CommandToggleMute:
		h.toggleStatus(c, cmd.Room, false)
	case CommandContentChange:
		h.contentChange(c, cmd.ContentType, cmd.ContentID)
	case CommandMediaJoin:
		h.mediaJoin(ctx, c, cmd.Room)
	default:
		h.sendError(c, coreError(ErrCodeBadRequest, "unknown command"))
	}
}

// joinRoom is idempotent: repeat joins keep membership intact but still
// re-broadcast the roster.
func (h *Hub) joinRoom(ctx context.Context, c *Client, roomID string) {
	room, exists := h.rooms[roomID]
	if !exists {
		room = NewRoom(roomID)
		h.rooms[roomID] = room
		h.activeRooms.Store(int64(len(h.rooms)))
	}

	added := room.Add(c)
	h.broadcastRoster(room)

	h.log.Debug().
		Str("user_id", c.UserID).
		Str("room_id", roomID).
		Bool("already_member", !added).
		Msg("room join")

	if added && h.store != nil {
		h.replayHistory(ctx, c, roomID)
	}
}

func (h *Hub) replayHistory(ctx context.Context, c *Client, roomID string) {
	messages, err := h.store.RecentRoomMessages(ctx, roomID, h.historyLimit)
	if err != nil {
		h.log.Warn().Err(err).Str("room_id", roomID).Msg("load room history")
		return
	}
	if len(messages) == 0 {
		return
	}
	h.send(c, &Event{
		Kind:     EventMessageHistory,
		Room:     roomID,
		Messages: messages,
	})
}

func (h *Hub) leaveRoom(c *Client, roomID string) {
	room, exists := h.rooms[roomID]
	if !exists {
		return
	}
	if !room.Remove(c) {
		// Leaving a room the connection never joined is a no-op.
		return
	}
	h.dropEmptyRoom(roomID, room)
	h.broadcastRoster(room)
}

func (h *Hub) roomMessage(ctx context.Context, c *Client, roomID, content string) {
	room, exists := h.rooms[roomID]
	if !exists || !room.Has(c) {
		h.sendError(c, coreError(ErrCodeNotInRoom, "join the room before sending to it"))
		return
	}

	msg := Message{
		Room:      roomID,
		SenderID:  c.UserID,
		Content:   content,
		Timestamp: time.Now(),
	}
	h.messagesIn.Add(1)

	if h.store != nil {
		if err := h.store.SaveRoomMessage(ctx, msg); err != nil {
			h.log.Warn().Err(err).Str("room_id", roomID).Msg("persist room message")
		}
	}

	h.countDropped(room.Broadcast(&Event{
		Kind:    EventRoomMessage,
		Room:    roomID,
		Message: msg,
	}))
}

// directMessage relays to every live connection of the recipient user.
// An offline recipient is a silent no-op; there is no delivery contract.
func (h *Hub) directMessage(c *Client, recipientID, content string) {
	event := &Event{
		Kind: EventDirectMessage,
		Message: Message{
			SenderID:  c.UserID,
			Content:   content,
			Timestamp: time.Now(),
		},
	}
	h.messagesIn.Add(1)

	for _, target := range h.clients {
		if target.UserID != recipientID {
			continue
		}
		h.send(target, event)
	}
}

func (h *Hub) toggleStatus(c *Client, roomID string, hand bool) {
	room, exists := h.rooms[roomID]
	if !exists || !room.Has(c) {
		h.sendError(c, coreError(ErrCodeNotInRoom, "join the room before toggling status"))
		return
	}

	var status string
	if hand {
		raised, _ := room.ToggleHand(c)
		status = StatusHandLowered
		if raised {
			status = StatusHandRaised
		}
	} else {
		muted, _ := room.ToggleMute(c)
		status = StatusUnmuted
		if muted {
			status = StatusMuted
		}
	}

	h.countDropped(room.Broadcast(&Event{
		Kind: EventParticipantStatus,
		Room: roomID,
		Status: StatusChange{
			ParticipantID: c.UserID,
			Status:        status,
		},
	}))
}

// contentChange collapses create/update/delete into a single invalidation
// signal fanned out to every connection, room membership aside.
func (h *Hub) contentChange(c *Client, contentType, contentID string) {
	h.log.Debug().
		Str("user_id", c.UserID).
		Str("content_type", contentType).
		Str("content_id", contentID).
		Msg("content change")

	h.broadcastAll(&Event{
		Kind:    EventContentUpdate,
		Content: ContentChange{Type: contentType, ID: contentID},
	})
}

func (h *Hub) mediaJoin(ctx context.Context, c *Client, roomID string) {
	room, exists := h.rooms[roomID]
	if !exists || !room.Has(c) {
		h.sendError(c, coreError(ErrCodeNotInRoom, "join the room before requesting media access"))
		return
	}
	if h.media == nil {
		h.sendError(c, coreError(ErrCodeMediaDisabled, "media sessions are not configured"))
		return
	}

	info, err := h.media.JoinInfo(ctx, roomID, c.UserID, c.Name)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("issue media join info")
		h.sendError(c, coreError(ErrCodeMediaFailed, "could not issue media credentials"))
		return
	}

	h.send(c, &Event{
		Kind:  EventMediaJoinInfo,
		Room:  roomID,
		Media: info,
	})
}

func (h *Hub) dropEmptyRoom(roomID string, room *Room) {
	if room.Empty() {
		delete(h.rooms, roomID)
		h.activeRooms.Store(int64(len(h.rooms)))
	}
}

func (h *Hub) broadcastRoster(room *Room) {
	h.countDropped(room.Broadcast(&Event{
		Kind:   EventRoomParticipants,
		Room:   room.ID,
		Roster: room.Roster(),
	}))
}

// broadcastPresence sends the full snapshot to every connection after each
// churn event. O(n) per churn is acceptable at community scale.
func (h *Hub) broadcastPresence() {
	users := make([]string, 0, len(h.clients))
	for _, c := range h.clients {
		users = append(users, c.UserID)
	}
	h.broadcastAll(&Event{Kind: EventUsersActive, Users: users})
}

func (h *Hub) broadcastAll(event *Event) {
	for _, c := range h.clients {
		h.send(c, event)
	}
}

func (h *Hub) send(c *Client, event *Event) {
	select {
	case c.Events <- event:
	default:
		// Drop if slow consumer.
		h.eventsDropped.Add(1)
	}
}

func (h *Hub) sendError(c *Client, err *CoreError) {
	h.send(c, &Event{Kind: EventError, Error: err})
}

func (h *Hub) countDropped(n int) {
	if n > 0 {
		h.eventsDropped.Add(int64(n))
	}
}

// Stats is a point-in-time view of hub activity.
type Stats struct {
	ActiveConnections int64 `json:"active_connections"`
	ActiveRooms       int64 `json:"active_rooms"`
	MessagesRouted    int64 `json:"messages_routed"`
	EventsDropped     int64 `json:"events_dropped"`
}

// Stats reports hub counters. Safe to call from any goroutine.
func (h *Hub) Stats() Stats {
	return Stats{
		ActiveConnections: h.activeConns.Load(),
		ActiveRooms:       h.activeRooms.Load(),
		MessagesRouted:    h.messagesIn.Load(),
		EventsDropped:     h.eventsDropped.Load(),
	}
}
