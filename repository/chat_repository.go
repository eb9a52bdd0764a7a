package repository

import (
	"context"

	"teamplayer/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRepository is the data access interface for room chat messages.
type ChatRepository interface {
	CreateMessage(ctx context.Context, msg *model.ChatMessage) error
	GetMessagesByRoom(ctx context.Context, roomID string) ([]*model.ChatMessage, error)
}

type gormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a GORM-backed chat repository.
func NewGormChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) CreateMessage(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormChatRepository) GetMessagesByRoom(ctx context.Context, roomID string) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
