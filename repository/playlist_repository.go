package repository

import (
	"context"

	"teamplayer/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlaylistRepository is the data access interface for playlists and their
// track associations.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*model.Playlist, error)
	// Remove deletes the playlist together with its track join rows.
	Remove(ctx context.Context, id string) error

	AddTrack(ctx context.Context, trackID, playlistID string) error
	RemoveTrack(ctx context.Context, trackID, playlistID string) error
	// TrackIDs returns the playlist's track IDs in insertion order.
	TrackIDs(ctx context.Context, playlistID string) ([]string, error)
	// TotalDuration sums the duration of the playlist's tracks.
	TotalDuration(ctx context.Context, playlistID string) (int, error)
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM-backed playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *gormPlaylistRepository) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&playlist).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) ListByCreator(ctx context.Context, creatorID string) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at ASC").
		Find(&playlists).Error
	return playlists, err
}

func (r *gormPlaylistRepository) Remove(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.TrackPlaylist{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Playlist{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.NotFoundf("playlist %s", id)
		}
		return nil
	})
}

func (r *gormPlaylistRepository) AddTrack(ctx context.Context, trackID, playlistID string) error {
	join := &model.TrackPlaylist{
		ID:         uuid.NewString(),
		TrackID:    trackID,
		PlaylistID: playlistID,
	}
	return r.db.WithContext(ctx).Create(join).Error
}

func (r *gormPlaylistRepository) RemoveTrack(ctx context.Context, trackID, playlistID string) error {
	return r.db.WithContext(ctx).
		Where("track_id = ? AND playlist_id = ?", trackID, playlistID).
		Delete(&model.TrackPlaylist{}).Error
}

func (r *gormPlaylistRepository) TrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	var joins []*model.TrackPlaylist
	err := r.db.WithContext(ctx).
		Where("playlist_id = ?", playlistID).
		Order("created_at ASC").
		Find(&joins).Error
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(joins))
	for _, join := range joins {
		ids = append(ids, join.TrackID)
	}
	return ids, nil
}

func (r *gormPlaylistRepository) TotalDuration(ctx context.Context, playlistID string) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.TrackPlaylist{}).
		Select("COALESCE(SUM(tracks.duration), 0)").
		Joins("JOIN tracks ON tracks.id = track_playlists.track_id").
		Where("track_playlists.playlist_id = ?", playlistID).
		Scan(&total).Error
	return int(total), err
}
