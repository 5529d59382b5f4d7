package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/peerbridge/chat-service/internal/domain"
)

// SupportCoordinator is the ticket-scoped twin of Coordinator: same room
// mechanics, no timer (tickets have no duration concept), plus ephemeral
// typing indicators.
type SupportCoordinator struct {
	registry *Registry
	tickets  domain.TicketChatRepository
	audit    domain.AuditRepository
	validate *validator.Validate

	maxMessageSize int64
}

// NewSupportCoordinator creates a support-chat coordinator
func NewSupportCoordinator(tickets domain.TicketChatRepository, audit domain.AuditRepository, maxMessageSize int64) *SupportCoordinator {
	return &SupportCoordinator{
		registry:       NewRegistry(),
		tickets:        tickets,
		audit:          audit,
		validate:       validator.New(),
		maxMessageSize: maxMessageSize,
	}
}

// Registry exposes room membership, mainly for tests and diagnostics
func (c *SupportCoordinator) Registry() *Registry {
	return c.registry
}

// HandleConnection owns the read loop of one support socket
func (c *SupportCoordinator) HandleConnection(ctx context.Context, ws *websocket.Conn) {
	runConn(ws, c.maxMessageSize,
		func(conn *Conn, env Envelope) { c.dispatch(ctx, conn, env) },
		c.leave,
	)
}

func (c *SupportCoordinator) leave(conn *Conn) {
	room, userID, _ := conn.Membership()
	if room == "" {
		return
	}
	c.registry.Remove(room, conn.ID())
	log.Info().
		Str("ticket_id", room).
		Str("user_id", userID).
		Msg("Left ticket room")
}

func (c *SupportCoordinator) dispatch(ctx context.Context, conn *Conn, env Envelope) {
	switch env.Event {
	case EventJoinTicket:
		c.handleJoin(ctx, conn, env.Data)
	case EventSupportMessage:
		c.handleMessage(ctx, conn, env.Data)
	case EventTyping, EventStopTyping:
		c.handleTyping(conn, env.Event, env.Data)
	default:
		log.Debug().Str("event", env.Event).Str("conn_id", conn.ID()).Msg("Ignoring unknown event")
	}
}

func (c *SupportCoordinator) handleJoin(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p JoinTicketPayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventJoinTicket).Msg("Dropping invalid payload")
		return
	}

	if prev := conn.Room(); prev != "" && prev != p.TicketID {
		c.registry.Remove(prev, conn.ID())
	}

	conn.SetMembership(p.TicketID, p.UserID, p.Role)
	c.registry.Add(p.TicketID, conn)

	auditCtx := context.WithoutCancel(ctx)
	go c.audit.Record(auditCtx, &domain.AuditEntry{
		ActorID:    p.UserID,
		ActorRole:  p.Role,
		Action:     domain.ActionSupportChatJoined,
		EntityType: domain.EntityTicket,
		EntityID:   p.TicketID,
	})

	c.registry.Broadcast(p.TicketID, EventUserJoinedTicket, UserJoinedPayload{
		UserID:    p.UserID,
		Role:      p.Role,
		Timestamp: time.Now().UTC(),
	})

	log.Info().
		Str("ticket_id", p.TicketID).
		Str("user_id", p.UserID).
		Str("role", string(p.Role)).
		Msg("Joined ticket room")
}

func (c *SupportCoordinator) handleMessage(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p SupportMessagePayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventSupportMessage).Msg("Dropping invalid payload")
		return
	}

	// A socket can only address the ticket room it joined
	if conn.Room() != p.TicketID {
		log.Warn().Str("ticket_id", p.TicketID).Str("conn_id", conn.ID()).Msg("Dropping message for an unjoined ticket")
		return
	}

	msg := domain.SupportMessage{
		SenderID:   p.SenderID,
		SenderRole: p.SenderRole,
		Message:    p.Message,
		CreatedAt:  time.Now().UTC(),
	}

	if err := c.tickets.Append(ctx, p.TicketID, msg); err != nil {
		log.Warn().Err(err).Str("ticket_id", p.TicketID).Msg("Support message append failed, retrying")
		if err := c.tickets.Append(ctx, p.TicketID, msg); err != nil {
			log.Error().Err(err).Str("ticket_id", p.TicketID).Msg("Support message append failed after retry, message not persisted")
		}
	}

	c.registry.Broadcast(p.TicketID, EventReceiveSupportMessage, ReceiveSupportMessagePayload{
		TicketID:   p.TicketID,
		SenderID:   p.SenderID,
		SenderRole: p.SenderRole,
		Message:    p.Message,
		CreatedAt:  msg.CreatedAt,
	})
}

// handleTyping relays typing indicators to everyone else in the room.
// Ephemeral: nothing is persisted and the sender never hears its own echo.
func (c *SupportCoordinator) handleTyping(conn *Conn, event string, data json.RawMessage) {
	var p TypingPayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", event).Msg("Dropping invalid payload")
		return
	}

	if conn.Room() != p.TicketID {
		log.Warn().Str("ticket_id", p.TicketID).Str("conn_id", conn.ID()).Msg("Dropping typing indicator for an unjoined ticket")
		return
	}

	c.registry.BroadcastExcept(p.TicketID, conn.ID(), event, p)
}
