package core

// Client is one live gateway connection as seen by the hub. A new physical
// connection always gets a fresh connection ID; there is no session
// resumption across reconnects.
type Client struct {
	// ID is the connection identifier, unique per physical connection.
	ID string
	// UserID is the stable identity, or a synthesized anonymous id.
	UserID        string
	Name          string
	Authenticated bool

	Commands chan *Command
	Events   chan *Event
}

// NewClient constructs a client with initialized channels. An empty userID
// yields an anonymous identity derived from the connection id.
func NewClient(id, userID, name string, authenticated bool) *Client {
	if userID == "" {
		userID = AnonymousUserID(id)
		authenticated = false
	}
	if name == "" {
		name = placeholderName(id)
	}
	return &Client{
		ID:            id,
		UserID:        userID,
		Name:          name,
		Authenticated: authenticated,
		Commands:      make(chan *Command, 8),
		Events:        make(chan *Event, 32),
	}
}

// AnonymousUserID synthesizes the identity used when no verified identity
// is available for a connection.
func AnonymousUserID(connectionID string) string {
	return "anonymous-" + connectionID
}

func placeholderName(connectionID string) string {
	short := connectionID
	if len(short) > 6 {
		short = short[:6]
	}
	return "User " + short
}
