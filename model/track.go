package model

import "time"

// Track is a song in the shared track storage. TrackID is the external
// catalogue identifier; re-adding an existing TrackID returns the stored
// row instead of creating a duplicate.
type Track struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	TrackID   string    `json:"trackID" gorm:"size:64;uniqueIndex;not null"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Artist    string    `json:"artist" gorm:"size:255"`
	ImgLink   string    `json:"imgLink" gorm:"size:512"`
	MusicLink string    `json:"musicLink" gorm:"size:512"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Track) TableName() string {
	return "tracks"
}
