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

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatHandler serves the chat websocket and the history endpoint.
type ChatHandler struct {
	chat     *room.ChatService
	presence *cache.RoomPresence
}

// NewChatHandler creates the chat handler.
func NewChatHandler(chat *room.ChatService, presence *cache.RoomPresence) *ChatHandler {
	return &ChatHandler{chat: chat, presence: presence}
}

// ChatSocketHandler upgrades the connection and pumps chat frames until
// the client disconnects.
func (h *ChatHandler) ChatSocketHandler(w http.ResponseWriter, r *http.Request) {
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
	h.chat.Connect(roomID, conn)
	defer conn.Close()

	if err := h.presence.SetOnline(r.Context(), roomID, userID); err != nil {
		logger.Warn("presence update failed", logger.ErrorField(err))
	}
	conn.OnClose(func() {
		if err := h.presence.SetOffline(context.Background(), roomID, userID); err != nil {
			logger.Warn("presence update failed", logger.ErrorField(err))
		}
	})

	logger.Info("chat socket open",
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
		h.chat.HandleFrame(r.Context(), conn, payload)
	}
}

// ChatHistoryHandler returns the room's persisted messages in send order.
func (h *ChatHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	messages, err := h.chat.History(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
