package core

// memberState tracks a room member together with its ephemeral status
// flags, so late joiners see current hand/mute state in the roster.
type memberState struct {
	client     *Client
	handRaised bool
	muted      bool
}

// Room groups clients that joined the same caller-named channel. The first
// join creates the room; the hub drops it once the last member is gone.
type Room struct {
	ID      string
	members map[*Client]*memberState
}

// NewRoom constructs a room with no members.
func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		members: make(map[*Client]*memberState),
	}
}

// Add inserts a client into the room. Returns false if the client was
// already a member; joining twice is a membership no-op.
func (r *Room) Add(c *Client) bool {
	if _, exists := r.members[c]; exists {
		return false
	}
	r.members[c] = &memberState{client: c}
	return true
}

// Remove deletes a client from the room. Returns true if it was a member.
func (r *Room) Remove(c *Client) bool {
	if _, exists := r.members[c]; !exists {
		return false
	}
	delete(r.members, c)
	return true
}

// Has reports whether the client is currently a member.
func (r *Room) Has(c *Client) bool {
	_, exists := r.members[c]
	return exists
}

// ToggleHand flips the member's hand-raised flag and returns the new value.
// The second result is false if the client is not a member.
func (r *Room) ToggleHand(c *Client) (bool, bool) {
	m, exists := r.members[c]
	if !exists {
		return false, false
	}
	m.handRaised = !m.handRaised
	return m.handRaised, true
}

// ToggleMute flips the member's muted flag and returns the new value.
// The second result is false if the client is not a member.
func (r *Room) ToggleMute(c *Client) (bool, bool) {
	m, exists := r.members[c]
	if !exists {
		return false, false
	}
	m.muted = !m.muted
	return m.muted, true
}

// Empty returns true if no clients are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Roster projects the member set into display records. Order carries no
// guarantee.
func (r *Room) Roster() []RosterEntry {
	roster := make([]RosterEntry, 0, len(r.members))
	for c, m := range r.members {
		roster = append(roster, RosterEntry{
			ID:            c.UserID,
			Name:          c.Name,
			Authenticated: c.Authenticated,
			HandRaised:    m.handRaised,
			Muted:         m.muted,
		})
	}
	return roster
}

// Broadcast sends an event to all room members.
func (r *Room) Broadcast(event *Event) int {
	dropped := 0
	for c := range r.members {
		select {
		case c.Events <- event:
		default:
			// Drop if slow consumer.
			dropped++
		}
	}
	return dropped
}
