package http

import (
	"encoding/json"

	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/proto"
)

// inboundToCommand validates a client event at the boundary and maps it to
// a hub command. Malformed payloads come back as a protocol error and never
// reach registry state.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundRoomJoin, proto.InboundRoomLeave, proto.InboundRoomMedia,
		proto.InboundToggleHand, proto.InboundToggleMute:
		var data proto.RoomData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		return &core.Command{
			Kind: roomCommandKind(inbound.Type),
			Room: data.RoomID,
		}, nil

	case proto.InboundRoomMessage:
		var data proto.RoomMessageData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		if data.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		return &core.Command{
			Kind:    core.CommandRoomMessage,
			Room:    data.RoomID,
			Content: data.Content,
		}, nil

	case proto.InboundDirectMessage:
		var data proto.DirectMessageData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		if data.RecipientID == "" {
			return nil, badRequest("recipientId is required")
		}
		return &core.Command{
			Kind:      core.CommandDirectMessage,
			Recipient: data.RecipientID,
			Content:   data.Content,
		}, nil

	case proto.InboundContentCreate, proto.InboundContentUpdate, proto.InboundContentDelete:
		var data proto.ContentData
		if perr := decode(inbound.Data, &data); perr != nil {
			return nil, perr
		}
		if data.Type == "" || data.ID == "" {
			return nil, badRequest("type and id are required")
		}
		return &core.Command{
			Kind:        core.CommandContentChange,
			ContentType: data.Type,
			ContentID:   string(data.ID),
		}, nil

	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown event type"}
	}
}

func roomCommandKind(eventType string) core.CommandKind {
	switch eventType {
	case proto.InboundRoomJoin:
		return core.CommandJoinRoom
	case proto.InboundRoomLeave:
		return core.CommandLeaveRoom
	case proto.InboundRoomMedia:
		return core.CommandMediaJoin
	case proto.InboundToggleHand:
		return core.CommandToggleHand
	default:
		return core.CommandToggleMute
	}
}

func decode(raw json.RawMessage, v any) *proto.Error {
	if len(raw) == 0 {
		return badRequest("payload is required")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest("malformed payload")
	}
	return nil
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomParticipants:
		return proto.Outbound{
			Type: proto.OutboundRoomParticipants,
			Data: proto.RoomParticipants{
				RoomID:       event.Room,
				Participants: participantsFromRoster(event.Roster),
			},
		}

	case core.EventRoomMessage:
		return proto.Outbound{
			Type: proto.OutboundRoomMessage,
			Data: roomMessageFromCore(event.Message),
		}

	case core.EventDirectMessage:
		return proto.Outbound{
			Type: proto.OutboundDirectMessage,
			Data: proto.DirectMessage{
				SenderID:  event.Message.SenderID,
				Content:   event.Message.Content,
				Timestamp: event.Message.Timestamp.UnixMilli(),
			},
		}

	case core.EventMessageHistory:
		messages := make([]proto.RoomMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, roomMessageFromCore(msg))
		}
		return proto.Outbound{
			Type: proto.OutboundMessageHistory,
			Data: proto.MessageHistory{
				RoomID:   event.Room,
				Messages: messages,
			},
		}

	case core.EventParticipantStatus:
		return proto.Outbound{
			Type: proto.OutboundParticipantStatus,
			Data: proto.ParticipantStatus{
				RoomID:        event.Room,
				ParticipantID: event.Status.ParticipantID,
				Status:        event.Status.Status,
			},
		}

	case core.EventContentUpdate:
		return proto.Outbound{
			Type: proto.OutboundContentUpdate,
			Data: proto.ContentData{
				Type: event.Content.Type,
				ID:   proto.ContentID(event.Content.ID),
			},
		}

	case core.EventUsersActive:
		return proto.Outbound{
			Type: proto.OutboundUsersActive,
			Data: event.Users,
		}

	case core.EventMediaJoinInfo:
		return proto.Outbound{
			Type: proto.OutboundRoomMedia,
			Data: proto.MediaJoinInfo{
				RoomID:   event.Room,
				URL:      event.Media.URL,
				Token:    event.Media.Token,
				RoomName: event.Media.RoomName,
				Identity: event.Media.Identity,
			},
		}

	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}

	default:
		return proto.Outbound{Type: proto.OutboundError, Error: &proto.Error{Code: "unknown", Msg: "unmapped event"}}
	}
}

func participantsFromRoster(roster []core.RosterEntry) []proto.Participant {
	participants := make([]proto.Participant, 0, len(roster))
	for _, entry := range roster {
		participants = append(participants, proto.Participant{
			ID:              entry.ID,
			Name:            entry.Name,
			IsAuthenticated: entry.Authenticated,
			HandRaised:      entry.HandRaised,
			Muted:           entry.Muted,
		})
	}
	return participants
}

func roomMessageFromCore(msg core.Message) proto.RoomMessage {
	return proto.RoomMessage{
		RoomID:    msg.Room,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Timestamp: msg.Timestamp.UnixMilli(),
	}
}
