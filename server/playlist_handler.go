package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"teamplayer/model"
	"teamplayer/repository"
)

// PlaylistHandler serves playlist and track storage endpoints.
type PlaylistHandler struct {
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
}

// NewPlaylistHandler creates the playlist handler.
func NewPlaylistHandler(playlists repository.PlaylistRepository, tracks repository.TrackRepository) *PlaylistHandler {
	return &PlaylistHandler{playlists: playlists, tracks: tracks}
}

// CreatePlaylistRequest is the playlist creation request body.
type CreatePlaylistRequest struct {
	Name        string `json:"name"`
	ImageData   string `json:"imageData"`
	Description string `json:"description"`
}

// CreatePlaylistHandler creates a standalone playlist owned by the caller.
func (h *PlaylistHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Playlist name is required", http.StatusBadRequest)
		return
	}

	playlist := &model.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		ImageData:   req.ImageData,
		CreatorID:   userID,
		Description: req.Description,
	}
	if err := h.playlists.Create(r.Context(), playlist); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

// ListPlaylistsHandler returns the caller's playlists with their summed
// durations.
func (h *PlaylistHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlists, err := h.playlists.ListByCreator(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]*model.PlaylistSummary, 0, len(playlists))
	for _, p := range playlists {
		seconds, err := h.playlists.TotalDuration(r.Context(), p.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		summaries = append(summaries, &model.PlaylistSummary{
			ID:           p.ID,
			Name:         p.Name,
			ImageData:    p.ImageData,
			CreatorID:    p.CreatorID,
			Description:  p.Description,
			TotalMinutes: seconds / 60,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// PlaylistTracksHandler returns the playlist's tracks in insertion order.
func (h *PlaylistHandler) PlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	playlistID := mux.Vars(r)["playlist_id"]

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	ids, err := h.playlists.TrackIDs(r.Context(), playlistID)
	if err != nil {
		writeError(w, err)
		return
	}

	tracks, err := h.tracks.GetByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	// GetByIDs gives no order guarantee; restore the join-row order.
	byID := make(map[string]*model.Track, len(tracks))
	for _, t := range tracks {
		byID[t.ID] = t
	}
	ordered := make([]*model.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	writeJSON(w, http.StatusOK, ordered)
}

// StoreTrackRequest is the track storage request body.
type StoreTrackRequest struct {
	TrackID   string `json:"trackID"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	ImgLink   string `json:"imgLink"`
	MusicLink string `json:"musicLink"`
	Duration  int    `json:"duration"`
}

// StoreTrackHandler puts a track into the shared storage. Re-posting an
// existing external track ID returns the stored row.
func (h *PlaylistHandler) StoreTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req StoreTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TrackID == "" || req.Title == "" {
		http.Error(w, "trackID and title are required", http.StatusBadRequest)
		return
	}

	track, err := h.tracks.GetOrCreate(r.Context(), &model.Track{
		TrackID:   req.TrackID,
		Title:     req.Title,
		Artist:    req.Artist,
		ImgLink:   req.ImgLink,
		MusicLink: req.MusicLink,
		Duration:  req.Duration,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// TrackRefRequest names a stored track for add and remove operations.
type TrackRefRequest struct {
	TrackID string `json:"trackID"`
}

// AddTrackHandler appends a stored track to the playlist.
func (h *PlaylistHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlistID := mux.Vars(r)["playlist_id"]

	var req TrackRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	track, err := h.tracks.GetByID(r.Context(), req.TrackID)
	if err != nil {
		writeError(w, err)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	if err := h.playlists.AddTrack(r.Context(), track.ID, playlistID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Track added"})
}

// RemoveTrackHandler removes a track from the playlist.
func (h *PlaylistHandler) RemoveTrackHandler(w http.ResponseWriter, r *http.Request) {
	playlistID := mux.Vars(r)["playlist_id"]

	var req TrackRefRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.playlists.RemoveTrack(r.Context(), req.TrackID, playlistID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Track removed"})
}

// RemovePlaylistHandler deletes a playlist owned by the caller.
func (h *PlaylistHandler) RemovePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID := mux.Vars(r)["playlist_id"]

	playlist, err := h.playlists.GetByID(r.Context(), playlistID)
	if err != nil {
		writeError(w, err)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}
	if playlist.CreatorID != userID {
		http.Error(w, "Only the playlist owner can remove it", http.StatusForbidden)
		return
	}

	if err := h.playlists.Remove(r.Context(), playlistID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Playlist removed"})
}
