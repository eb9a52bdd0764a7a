package server

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"teamplayer/cache"
	"teamplayer/core/room"
	"teamplayer/logger"
)

// StreamHandler serves the audio streaming and playback control websocket.
type StreamHandler struct {
	playback *room.PlaybackService
	presence *cache.RoomPresence
}

// NewStreamHandler creates the stream handler.
func NewStreamHandler(playback *room.PlaybackService, presence *cache.RoomPresence) *StreamHandler {
	return &StreamHandler{playback: playback, presence: presence}
}

// StreamSocketHandler upgrades the connection and pumps playback frames.
// A numeric frame starts a track broadcast to everyone on the room's
// stream channel; control words are relayed verbatim.
func (h *StreamHandler) StreamSocketHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	roomID := mux.Vars(r)["room_id"]

	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", logger.ErrorField(err))
		return
	}

	conn := room.NewConn(ws)
	h.playback.Connect(roomID, conn)
	defer conn.Close()

	if err := h.presence.SetOnline(r.Context(), roomID, userID); err != nil {
		logger.Warn("presence update failed", logger.ErrorField(err))
	}
	conn.OnClose(func() {
		if err := h.presence.SetOffline(context.Background(), roomID, userID); err != nil {
			logger.Warn("presence update failed", logger.ErrorField(err))
		}
	})

	logger.Info("stream socket open",
		logger.String("room", roomID),
		logger.String("user", userID))

	for {
		messageType, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.playback.HandleFrame(r.Context(), roomID, conn, string(payload))
	}
}

// OnlineUsersHandler returns the IDs of users currently connected to the
// room's sockets.
func (h *StreamHandler) OnlineUsersHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	users, err := h.presence.OnlineUsers(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
