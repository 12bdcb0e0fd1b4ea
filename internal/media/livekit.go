// Package media issues credentials for joining a room's audio/video
// session. The media transport itself runs on LiveKit; the gateway only
// signs join tokens.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/koinonia-app/rooms-gateway/internal/core"
)

const tokenValidity = time.Hour

// LiveKitEngine implements core.MediaEngine backed by LiveKit.
type LiveKitEngine struct {
	apiKey    string
	apiSecret string
	wsURL     string
}

// New creates a LiveKit engine with the given API credentials.
func New(apiKey, apiSecret, wsURL string) *LiveKitEngine {
	return &LiveKitEngine{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		wsURL:     wsURL,
	}
}

// JoinInfo signs a room-scoped access token for the given identity.
// LiveKit creates rooms on demand when the first participant joins, so no
// provisioning call is needed here.
func (e *LiveKitEngine) JoinInfo(_ context.Context, roomID, identity, name string) (*core.MediaJoinInfo, error) {
	roomName := MediaRoomName(roomID)

	at := auth.NewAccessToken(e.apiKey, e.apiSecret)
	grant := &auth.VideoGrant{
		RoomJoin: true,
		Room:     roomName,
	}
	at.SetVideoGrant(grant).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(tokenValidity)

	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("generate media token: %w", err)
	}

	return &core.MediaJoinInfo{
		URL:      e.wsURL,
		Token:    token,
		RoomName: roomName,
		Identity: identity,
	}, nil
}

// MediaRoomName maps a gateway room id onto its LiveKit room.
func MediaRoomName(roomID string) string {
	return "koinonia-room-" + roomID
}

var _ core.MediaEngine = (*LiveKitEngine)(nil)
