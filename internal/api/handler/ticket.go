package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/peerbridge/chat-service/internal/api/response"
	"github.com/peerbridge/chat-service/internal/domain"
)

// TicketHandler exposes the admin read surface over support-chat logs
type TicketHandler struct {
	tickets domain.TicketChatRepository
}

// NewTicketHandler creates a new ticket chat handler
func NewTicketHandler(tickets domain.TicketChatRepository) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// GetHistory returns the ordered message log for a support ticket
func (h *TicketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")
	if ticketID == "" {
		response.BadRequest(w, "missing ticket ID")
		return
	}

	messages, err := h.tickets.GetHistory(r.Context(), ticketID)
	if err != nil {
		response.InternalError(w, "failed to fetch ticket messages")
		return
	}

	response.OK(w, map[string]any{
		"ticketId": ticketID,
		"messages": messages,
	})
}
