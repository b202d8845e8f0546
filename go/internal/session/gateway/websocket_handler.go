package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for room connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleRoomConnection joins a room as a participant, or as the host when a
// valid host_key is given.
func (h *WebSocketHandler) HandleRoomConnection(w http.ResponseWriter, r *http.Request) {
	roomCode := session.NormalizeRoomCode(r.URL.Query().Get("room"))
	if roomCode == "" {
		http.Error(w, "room is required", http.StatusBadRequest)
		return
	}
	if !session.ValidRoomCode(roomCode) {
		http.Error(w, "invalid room code format", http.StatusBadRequest)
		return
	}

	actor := session.Participant()
	if key := r.URL.Query().Get("host_key"); key != "" {
		actor = session.Host(key)
	}

	view, err := h.connectionManager.app.GetView(r.Context(), roomCode, actor)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			http.Error(w, "room not found", http.StatusNotFound)
		case errors.Is(err, models.ErrForbidden):
			http.Error(w, "invalid host key", http.StatusForbidden)
		default:
			http.Error(w, "failed to load room", http.StatusInternalServerError)
		}
		return
	}

	if err := h.connectionManager.UpgradeConnection(w, r, roomCode, actor, view); err != nil {
		// the upgrader has already written the HTTP error
		log.Error().
			Err(err).
			Str("room_code", roomCode).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/room", h.HandleRoomConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
