package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"teamplayer/model"
)

func seedTrack(t *testing.T, gdb *gorm.DB, externalID, title string, duration int) *model.Track {
	t.Helper()
	track := &model.Track{
		ID:       uuid.NewString(),
		TrackID:  externalID,
		Title:    title,
		Duration: duration,
	}
	require.NoError(t, gdb.Create(track).Error)
	return track
}

func TestPlaylistTrackOrderIsInsertionOrder(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGormPlaylistRepository(gdb)
	owner := seedUser(t, gdb, "owner")

	playlist := &model.Playlist{Name: "Mix", CreatorID: owner.ID}
	require.NoError(t, repo.Create(context.Background(), playlist))

	first := seedTrack(t, gdb, "ext-1", "First", 60)
	second := seedTrack(t, gdb, "ext-2", "Second", 60)
	third := seedTrack(t, gdb, "ext-3", "Third", 60)

	for _, track := range []*model.Track{second, first, third} {
		require.NoError(t, repo.AddTrack(context.Background(), track.ID, playlist.ID))
		time.Sleep(2 * time.Millisecond)
	}

	ids, err := repo.TrackIDs(context.Background(), playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID, first.ID, third.ID}, ids)
}

func TestPlaylistRemoveTrack(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGormPlaylistRepository(gdb)
	owner := seedUser(t, gdb, "owner")

	playlist := &model.Playlist{Name: "Mix", CreatorID: owner.ID}
	require.NoError(t, repo.Create(context.Background(), playlist))
	track := seedTrack(t, gdb, "ext-1", "Song", 60)
	require.NoError(t, repo.AddTrack(context.Background(), track.ID, playlist.ID))

	require.NoError(t, repo.RemoveTrack(context.Background(), track.ID, playlist.ID))

	ids, err := repo.TrackIDs(context.Background(), playlist.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// The track itself stays in the shared storage.
	var count int64
	gdb.Model(&model.Track{}).Where("id = ?", track.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestPlaylistRemoveCascadesJoins(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGormPlaylistRepository(gdb)
	owner := seedUser(t, gdb, "owner")

	playlist := &model.Playlist{Name: "Mix", CreatorID: owner.ID}
	require.NoError(t, repo.Create(context.Background(), playlist))
	track := seedTrack(t, gdb, "ext-1", "Song", 60)
	require.NoError(t, repo.AddTrack(context.Background(), track.ID, playlist.ID))

	require.NoError(t, repo.Remove(context.Background(), playlist.ID))

	var count int64
	gdb.Model(&model.TrackPlaylist{}).Where("playlist_id = ?", playlist.ID).Count(&count)
	assert.Zero(t, count)

	err := repo.Remove(context.Background(), playlist.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPlaylistTotalDuration(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGormPlaylistRepository(gdb)
	owner := seedUser(t, gdb, "owner")

	playlist := &model.Playlist{Name: "Mix", CreatorID: owner.ID}
	require.NoError(t, repo.Create(context.Background(), playlist))

	empty, err := repo.TotalDuration(context.Background(), playlist.ID)
	require.NoError(t, err)
	assert.Zero(t, empty)

	a := seedTrack(t, gdb, "ext-1", "A", 120)
	b := seedTrack(t, gdb, "ext-2", "B", 185)
	require.NoError(t, repo.AddTrack(context.Background(), a.ID, playlist.ID))
	require.NoError(t, repo.AddTrack(context.Background(), b.ID, playlist.ID))

	total, err := repo.TotalDuration(context.Background(), playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, 305, total)
}

func TestTrackGetOrCreateDeduplicates(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewGormTrackRepository(gdb)

	first, err := repo.GetOrCreate(context.Background(), &model.Track{
		TrackID: "ext-1",
		Title:   "Song",
	})
	require.NoError(t, err)

	second, err := repo.GetOrCreate(context.Background(), &model.Track{
		TrackID: "ext-1",
		Title:   "Song (reposted)",
	})
	require.NoError(t, err)

	// The stored row wins; no duplicate is created.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Song", second.Title)

	var count int64
	gdb.Model(&model.Track{}).Where("track_id = ?", "ext-1").Count(&count)
	assert.EqualValues(t, 1, count)
}
