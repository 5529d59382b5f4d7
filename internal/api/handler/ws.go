package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/peerbridge/chat-service/internal/chat"
)

// WSHandler upgrades HTTP requests into the session-chat and support-chat
// socket namespaces.
type WSHandler struct {
	upgrader websocket.Upgrader
	sessions *chat.Coordinator
	support  *chat.SupportCoordinator
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(sessions *chat.Coordinator, support *chat.SupportCoordinator) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Mobile clients connect from app webviews without a stable
			// origin; membership payloads carry the actor identity.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: sessions,
		support:  support,
	}
}

// Session upgrades and serves a session-chat connection until it closes
func (h *WSHandler) Session(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Session socket upgrade failed")
		return
	}
	// In-flight persistence must outlive the request context once the
	// socket drops, so the coordinator runs on a background context.
	h.sessions.HandleConnection(context.Background(), ws)
}

// Support upgrades and serves a support-chat connection until it closes
func (h *WSHandler) Support(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Support socket upgrade failed")
		return
	}
	h.support.HandleConnection(context.Background(), ws)
}
