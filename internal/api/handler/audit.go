package handler

import (
	"net/http"
	"strconv"

	"github.com/peerbridge/chat-service/internal/api/response"
	"github.com/peerbridge/chat-service/internal/domain"
)

const maxAuditQueryLimit = 500

// AuditHandler exposes the admin query surface over audit entries
type AuditHandler struct {
	audit domain.AuditRepository
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit domain.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// Query returns audit entries filtered by actor/action/entity, newest first
func (h *AuditHandler) Query(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		ActorID:    r.URL.Query().Get("actorId"),
		Action:     domain.AuditAction(r.URL.Query().Get("action")),
		EntityType: r.URL.Query().Get("entityType"),
		EntityID:   r.URL.Query().Get("entityId"),
	}

	var limit int64
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.ParseInt(l, 10, 64)
		if err != nil || v <= 0 {
			response.BadRequest(w, "invalid limit")
			return
		}
		if v > maxAuditQueryLimit {
			v = maxAuditQueryLimit
		}
		limit = v
	}

	entries, err := h.audit.Query(r.Context(), filter, limit)
	if err != nil {
		response.InternalError(w, "failed to query audit entries")
		return
	}

	response.OK(w, map[string]any{"entries": entries})
}
