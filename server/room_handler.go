package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"teamplayer/core/room"
	"teamplayer/model"
)

// RoomHandler serves the room lifecycle and membership endpoints.
type RoomHandler struct {
	rooms *room.Service
}

// NewRoomHandler creates the room handler.
func NewRoomHandler(rooms *room.Service) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// CreateRoomRequest is the room creation request body.
type CreateRoomRequest struct {
	Name        string `json:"name"`
	IsPrivate   bool   `json:"isPrivate"`
	ImageData   string `json:"imageData"`
	Description string `json:"description"`
}

// CreateRoomHandler creates a room with its playlist.
func (h *RoomHandler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Room name is required", http.StatusBadRequest)
		return
	}

	created, err := h.rooms.CreateRoom(r.Context(), userID, room.CreateRoomInput{
		Name:        req.Name,
		IsPrivate:   req.IsPrivate,
		ImageData:   req.ImageData,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListJoinedHandler returns the rooms the caller is a member of.
func (h *RoomHandler) ListJoinedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rooms, err := h.rooms.ListJoined(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomViews(rooms))
}

// ListPublicHandler returns all public rooms.
func (h *RoomHandler) ListPublicHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListPublic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomViews(rooms))
}

// SearchHandler returns rooms whose name contains the "name" query.
func (h *RoomHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Query parameter 'name' is required", http.StatusBadRequest)
		return
	}

	rooms, err := h.rooms.SearchByName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomViews(rooms))
}

// RatingHandler returns the busiest rooms by member count.
func (h *RoomHandler) RatingHandler(w http.ResponseWriter, r *http.Request) {
	rating, err := h.rooms.Rating(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rating)
}

// JoinRoomRequest is the body for joining by room ID.
type JoinRoomRequest struct {
	RoomID         string `json:"roomID"`
	InvitationCode string `json:"invitationCode"`
}

// JoinRoomHandler adds the caller to a room by ID. Private rooms require
// the invitation code in the body.
func (h *RoomHandler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RoomID == "" {
		http.Error(w, "roomID is required", http.StatusBadRequest)
		return
	}

	resp, err := h.rooms.JoinRoom(r.Context(), req.RoomID, userID, req.InvitationCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// JoinByCodeHandler adds the caller to the room matching the invitation
// code.
func (h *RoomHandler) JoinByCodeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		InvitationCode string `json:"invitationCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.InvitationCode == "" {
		http.Error(w, "invitationCode is required", http.StatusBadRequest)
		return
	}

	resp, err := h.rooms.JoinRoomByCode(r.Context(), req.InvitationCode, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMembersHandler returns the room's members to a fellow member.
func (h *RoomHandler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := mux.Vars(r)["room_id"]
	members, err := h.rooms.ListMembers(r.Context(), roomID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// SetDJRequest is the DJ handoff request body.
type SetDJRequest struct {
	NewDJID string `json:"newDJ"`
}

// SetDJHandler transfers room and playlist ownership to the new DJ.
func (h *RoomHandler) SetDJHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := mux.Vars(r)["room_id"]

	var req SetDJRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewDJID == "" {
		http.Error(w, "newDJ is required", http.StatusBadRequest)
		return
	}

	if err := h.rooms.SetDJ(r.Context(), roomID, userID, req.NewDJID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "DJ changed"})
}

// LeaveRoomHandler removes the caller from the room.
func (h *RoomHandler) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := mux.Vars(r)["room_id"]
	if err := h.rooms.LeaveRoom(r.Context(), roomID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Left the room"})
}

// CloseRoomHandler deletes the room with everything attached to it.
func (h *RoomHandler) CloseRoomHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := mux.Vars(r)["room_id"]
	if err := h.rooms.CloseRoom(r.Context(), roomID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Room closed"})
}

// KickRequest is the kick request body.
type KickRequest struct {
	UserID string `json:"userID"`
}

// KickHandler removes another member from the room.
func (h *RoomHandler) KickHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID := mux.Vars(r)["room_id"]

	var req KickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	if err := h.rooms.KickParticipant(r.Context(), roomID, userID, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.Status{Message: "Participant removed"})
}

// PlaylistIDHandler returns the ID of the room's bound playlist.
func (h *RoomHandler) PlaylistIDHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	id, err := h.rooms.PlaylistID(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"playlistID": id})
}

func roomViews(rooms []*model.Room) []model.RoomView {
	views := make([]model.RoomView, 0, len(rooms))
	for _, r := range rooms {
		views = append(views, r.View())
	}
	return views
}
