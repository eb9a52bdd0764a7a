package room

import (
	"context"
	"encoding/json"

	"teamplayer/logger"
	"teamplayer/model"
	"teamplayer/repository"
)

// ChatService handles the realtime chat path: parse, persist, fan out.
type ChatService struct {
	registry *Registry
	chats    repository.ChatRepository
}

// NewChatService creates the chat service over the registry and repository.
func NewChatService(registry *Registry, chats repository.ChatRepository) *ChatService {
	return &ChatService{
		registry: registry,
		chats:    chats,
	}
}

// Connect joins the connection to the room's chat domain and arranges its
// removal from every domain on close.
func (s *ChatService) Connect(roomID string, conn *Conn) {
	s.registry.Join(ChatDomain(roomID), conn)
	conn.OnClose(func() {
		s.registry.Drop(conn)
	})
}

// HandleFrame processes one inbound chat frame. A malformed frame is
// logged and dropped; the connection stays open. The message is persisted
// first and broadcast only after the write succeeded, so listeners never
// see a message that isn't durable.
func (s *ChatService) HandleFrame(ctx context.Context, conn *Conn, payload []byte) {
	var frame model.ChatFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		logger.Warn("invalid chat frame",
			logger.ErrorField(err),
			logger.String("conn", conn.ID()))
		return
	}
	if frame.Message == "" || frame.Creator == "" || frame.Room == "" {
		logger.Warn("chat frame missing fields", logger.String("conn", conn.ID()))
		return
	}

	msg := &model.ChatMessage{
		Message:   frame.Message,
		CreatorID: frame.Creator,
		RoomID:    frame.Room,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		logger.Error("failed to persist chat message",
			logger.ErrorField(err),
			logger.String("room", frame.Room))
		return
	}

	s.registry.BroadcastText(ChatDomain(frame.Room), payload)
}

// History returns the room's persisted messages in chronological order.
func (s *ChatService) History(ctx context.Context, roomID string) ([]*model.ChatMessage, error) {
	return s.chats.GetMessagesByRoom(ctx, roomID)
}
