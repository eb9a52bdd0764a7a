package model

import "time"

// Room is a live listening session. The creator is the room's DJ; the
// capacity is frozen from the creator's plan at creation time.
type Room struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Name           string    `json:"name" gorm:"size:100;not null"`
	CreatorID      string    `json:"creator" gorm:"size:36;index;not null"`
	IsPrivate      bool      `json:"isPrivate" gorm:"not null"`
	InvitationCode string    `json:"invitationCode" gorm:"size:8;index"`
	UsersInRoom    int       `json:"usersInRoom" gorm:"not null"`
	ImageData      string    `json:"imageData,omitempty" gorm:"type:mediumtext"`
	Description    string    `json:"description" gorm:"type:text"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Room) TableName() string {
	return "music_rooms"
}

// RoomUser is the membership row tying a user to a room. The join logic
// keeps at most one row per (user, room) pair.
type RoomUser struct {
	ID       string    `json:"id" gorm:"primaryKey;size:36"`
	RoomID   string    `json:"musicRoom" gorm:"size:36;index;not null"`
	UserID   string    `json:"user" gorm:"size:36;index;not null"`
	JoinedAt time.Time `json:"joinedAt" gorm:"autoCreateTime"`
}

func (RoomUser) TableName() string {
	return "music_room_users"
}

// RoomPlaylist binds the room's single playlist to the room. Created and
// deleted together with the room.
type RoomPlaylist struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	RoomID     string `json:"musicRoom" gorm:"size:36;uniqueIndex;not null"`
	PlaylistID string `json:"playlist" gorm:"size:36;index;not null"`
}

func (RoomPlaylist) TableName() string {
	return "music_room_playlists"
}

// RoomView is the room shape returned by list and join endpoints.
type RoomView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	IsPrivate      bool   `json:"isPrivate"`
	InvitationCode string `json:"invitationCode"`
	Description    string `json:"description"`
	ImageData      string `json:"imageData"`
}

// JoinResponse is returned by the join endpoints. Creator carries the
// owner's display name rather than their ID.
type JoinResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	IsPrivate      bool   `json:"isPrivate"`
	InvitationCode string `json:"invitationCode"`
	Description    string `json:"description"`
}

// RoomRating is a room plus its member count, for the rating endpoint.
type RoomRating struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	IsPrivate      bool   `json:"isPrivate"`
	InvitationCode string `json:"invitationCode"`
	ImageData      string `json:"imageData"`
	CountOfPeople  int    `json:"countOfPeople"`
}

// View converts a Room to its public view.
func (r *Room) View() RoomView {
	return RoomView{
		ID:             r.ID,
		Name:           r.Name,
		Creator:        r.CreatorID,
		IsPrivate:      r.IsPrivate,
		InvitationCode: r.InvitationCode,
		Description:    r.Description,
		ImageData:      r.ImageData,
	}
}
