package model

import "time"

// Playlist holds an ordered collection of tracks. Order is the insertion
// order of the track_playlists join rows.
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	ImageData   string    `json:"imageData,omitempty" gorm:"type:mediumtext"`
	CreatorID   string    `json:"creator" gorm:"size:36;index;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Playlist) TableName() string {
	return "playlists"
}

// TrackPlaylist is the join row between a track and a playlist.
type TrackPlaylist struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	TrackID    string    `json:"track" gorm:"size:36;index;not null"`
	PlaylistID string    `json:"playlist" gorm:"size:36;index;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (TrackPlaylist) TableName() string {
	return "track_playlists"
}

// PlaylistSummary is a playlist plus the summed duration of its tracks.
type PlaylistSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ImageData    string `json:"imageData"`
	CreatorID    string `json:"creatorId"`
	Description  string `json:"description"`
	TotalMinutes int    `json:"totalMinutes"`
}
