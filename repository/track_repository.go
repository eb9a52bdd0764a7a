package repository

import (
	"context"

	"teamplayer/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackRepository is the data access interface for the shared track storage.
type TrackRepository interface {
	// GetOrCreate stores the track unless a row with the same external
	// track ID already exists, in which case the stored row is returned.
	GetOrCreate(ctx context.Context, track *model.Track) (*model.Track, error)
	GetByID(ctx context.Context, id string) (*model.Track, error)
	GetByIDs(ctx context.Context, ids []string) ([]*model.Track, error)
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a GORM-backed track repository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) GetOrCreate(ctx context.Context, track *model.Track) (*model.Track, error) {
	var existing model.Track
	err := r.db.WithContext(ctx).Where("track_id = ?", track.TrackID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(track).Error; err != nil {
		return nil, err
	}
	return track, nil
}

func (r *gormTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&track).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

func (r *gormTrackRepository) GetByIDs(ctx context.Context, ids []string) ([]*model.Track, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tracks []*model.Track
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tracks).Error
	return tracks, err
}
