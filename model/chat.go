package model

import "time"

// ChatMessage is one persisted room chat message. Messages are immutable
// and are always written before they are broadcast.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatorID string    `json:"creator" gorm:"size:36;index;not null"`
	RoomID    string    `json:"musicRoom" gorm:"size:36;index;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chats"
}

// ChatFrame is the wire shape of an inbound and outbound chat socket frame.
type ChatFrame struct {
	Message string `json:"message"`
	Creator string `json:"creator"`
	Room    string `json:"musicRoom"`
}
