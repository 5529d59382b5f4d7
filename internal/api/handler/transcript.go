package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peerbridge/chat-service/internal/api/response"
	"github.com/peerbridge/chat-service/internal/domain"
)

// TranscriptHandler exposes the admin read/delete surface over transcripts
type TranscriptHandler struct {
	transcripts domain.TranscriptRepository
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(transcripts domain.TranscriptRepository) *TranscriptHandler {
	return &TranscriptHandler{transcripts: transcripts}
}

// GetHistory returns the ordered message log for a session
func (h *TranscriptHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "missing session ID")
		return
	}

	messages, err := h.transcripts.GetHistory(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, "failed to fetch transcript")
		return
	}

	response.OK(w, map[string]any{
		"sessionId": sessionID,
		"messages":  messages,
	})
}

// Delete removes a session transcript entirely
func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		response.BadRequest(w, "missing session ID")
		return
	}

	if err := h.transcripts.Delete(r.Context(), sessionID); err != nil {
		response.InternalError(w, "failed to delete transcript")
		return
	}

	response.OK(w, map[string]string{"message": "transcript deleted"})
}
