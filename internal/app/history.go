package app

import (
	"context"

	"github.com/koinonia-app/rooms-gateway/internal/core"
	"github.com/koinonia-app/rooms-gateway/internal/store"
)

// historyStore adapts the persistence layer to the hub's history interface.
type historyStore struct {
	messages store.MessageStore
}

func (s *historyStore) SaveRoomMessage(ctx context.Context, msg core.Message) error {
	return s.messages.SaveRoomMessage(ctx, store.RoomMessage{
		RoomID:    msg.Room,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.Timestamp,
	})
}

func (s *historyStore) RecentRoomMessages(ctx context.Context, roomID string, limit int) ([]core.Message, error) {
	rows, err := s.messages.RecentRoomMessages(ctx, roomID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]core.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.Message{
			Room:      row.RoomID,
			SenderID:  row.SenderID,
			Content:   row.Content,
			Timestamp: row.CreatedAt,
		})
	}
	return out, nil
}
