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

// Coordinator is the per-session room state machine: it tracks membership,
// starts and ends the session timer, persists messages before broadcasting
// them, relays WebRTC signaling, and emits audit entries for lifecycle
// events.
type Coordinator struct {
	registry    *Registry
	timer       domain.SessionTimer
	transcripts domain.TranscriptRepository
	audit       domain.AuditRepository
	validate    *validator.Validate

	maxMessageSize int64
}

// NewCoordinator creates a session-chat coordinator
func NewCoordinator(timer domain.SessionTimer, transcripts domain.TranscriptRepository, audit domain.AuditRepository, maxMessageSize int64) *Coordinator {
	return &Coordinator{
		registry:       NewRegistry(),
		timer:          timer,
		transcripts:    transcripts,
		audit:          audit,
		validate:       validator.New(),
		maxMessageSize: maxMessageSize,
	}
}

// Registry exposes room membership, mainly for tests and diagnostics
func (c *Coordinator) Registry() *Registry {
	return c.registry
}

// HandleConnection owns the read loop of one socket until it disconnects.
// Disconnect only removes room membership; it never ends the session, and
// persistence already in flight is left to complete.
func (c *Coordinator) HandleConnection(ctx context.Context, ws *websocket.Conn) {
	runConn(ws, c.maxMessageSize,
		func(conn *Conn, env Envelope) { c.dispatch(ctx, conn, env) },
		c.leave,
	)
}

func (c *Coordinator) leave(conn *Conn) {
	room, userID, _ := conn.Membership()
	if room == "" {
		return
	}
	c.registry.Remove(room, conn.ID())
	log.Info().
		Str("session_id", room).
		Str("user_id", userID).
		Int("members", c.registry.Count(room)).
		Msg("Left session room")
}

func (c *Coordinator) dispatch(ctx context.Context, conn *Conn, env Envelope) {
	switch env.Event {
	case EventJoinSession:
		c.handleJoin(ctx, conn, env.Data)
	case EventSendMessage:
		c.handleSendMessage(ctx, conn, env.Data)
	case EventGetSessionDuration:
		c.handleGetDuration(ctx, conn, env.Data)
	case EventEndSession:
		c.handleEndSession(ctx, conn, env.Data)
	case EventCallOffer, EventCallAnswer, EventICECandidate:
		c.relaySignal(conn, env)
	default:
		log.Debug().Str("event", env.Event).Str("conn_id", conn.ID()).Msg("Ignoring unknown event")
	}
}

func (c *Coordinator) handleJoin(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p JoinSessionPayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventJoinSession).Msg("Dropping invalid payload")
		return
	}

	// A connection belongs to one room at a time; switching rooms leaves
	// the old one first.
	if prev := conn.Room(); prev != "" && prev != p.SessionID {
		c.registry.Remove(prev, conn.ID())
	}

	conn.SetMembership(p.SessionID, p.UserID, p.Role)
	c.registry.Add(p.SessionID, conn)

	// First join wins inside the store; a rejoin never resets the clock.
	c.timer.StartTimer(ctx, p.SessionID)

	c.recordAudit(ctx, domain.AuditEntry{
		ActorID:    p.UserID,
		ActorRole:  p.Role,
		Action:     domain.ActionSessionJoined,
		EntityType: domain.EntitySession,
		EntityID:   p.SessionID,
	})

	c.registry.Broadcast(p.SessionID, EventUserJoined, UserJoinedPayload{
		UserID:    p.UserID,
		Role:      p.Role,
		Timestamp: time.Now().UTC(),
	})

	log.Info().
		Str("session_id", p.SessionID).
		Str("user_id", p.UserID).
		Str("role", string(p.Role)).
		Int("members", c.registry.Count(p.SessionID)).
		Msg("Joined session room")
}

func (c *Coordinator) handleSendMessage(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p SendMessagePayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventSendMessage).Msg("Dropping invalid payload")
		return
	}

	// A socket can only address the room it joined
	if conn.Room() != p.SessionID {
		log.Warn().Str("session_id", p.SessionID).Str("conn_id", conn.ID()).Msg("Dropping message for an unjoined session")
		return
	}

	msg := domain.ChatMessage{
		SenderID:   p.SenderID,
		SenderRole: p.SenderRole,
		Message:    p.Message,
		CreatedAt:  time.Now().UTC(),
	}

	// The transcript is the durable record of the session, so the append
	// happens before anyone sees the broadcast, and a transient failure
	// gets one immediate retry before we fall back to delivery-only.
	if err := c.transcripts.Append(ctx, p.SessionID, msg); err != nil {
		log.Warn().Err(err).Str("session_id", p.SessionID).Msg("Transcript append failed, retrying")
		if err := c.transcripts.Append(ctx, p.SessionID, msg); err != nil {
			log.Error().Err(err).Str("session_id", p.SessionID).Msg("Transcript append failed after retry, message not persisted")
		}
	}

	c.registry.Broadcast(p.SessionID, EventReceiveMessage, ReceiveMessagePayload{
		SessionID:  p.SessionID,
		SenderID:   p.SenderID,
		SenderRole: p.SenderRole,
		Message:    p.Message,
		CreatedAt:  msg.CreatedAt,
	})
}

func (c *Coordinator) handleGetDuration(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p SessionRefPayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventGetSessionDuration).Msg("Dropping invalid payload")
		return
	}

	// Answer goes to the requester only, not the room.
	duration := c.timer.GetDuration(ctx, p.SessionID)
	if err := conn.WriteEvent(EventSessionDuration, SessionDurationPayload{Duration: duration}); err != nil {
		log.Warn().Err(err).Str("conn_id", conn.ID()).Msg("Failed to answer duration request")
	}
}

func (c *Coordinator) handleEndSession(ctx context.Context, conn *Conn, data json.RawMessage) {
	var p EndSessionPayload
	if err := decodePayload(c.validate, data, &p); err != nil {
		log.Warn().Err(err).Str("event", EventEndSession).Msg("Dropping invalid payload")
		return
	}

	if conn.Room() != p.SessionID {
		log.Warn().Str("session_id", p.SessionID).Str("conn_id", conn.ID()).Msg("Dropping end request for an unjoined session")
		return
	}

	duration := c.timer.EndTimer(ctx, p.SessionID)

	c.recordAudit(ctx, domain.AuditEntry{
		ActorID:    p.UserID,
		ActorRole:  p.Role,
		Action:     domain.ActionSessionEnded,
		EntityType: domain.EntitySession,
		EntityID:   p.SessionID,
		Metadata:   map[string]any{"duration": duration},
	})

	// Members stay connected until they disconnect themselves.
	c.registry.Broadcast(p.SessionID, EventSessionEnded, SessionEndedPayload{
		Duration:  duration,
		Timestamp: time.Now().UTC(),
	})

	log.Info().
		Str("session_id", p.SessionID).
		Str("user_id", p.UserID).
		Int64("duration", duration).
		Msg("Session ended")
}

// relaySignal forwards WebRTC signaling payloads untouched to the rest of
// the room. No persistence, no shape validation.
func (c *Coordinator) relaySignal(conn *Conn, env Envelope) {
	room := conn.Room()
	if room == "" {
		log.Warn().Str("event", env.Event).Str("conn_id", conn.ID()).Msg("Dropping signal from connection outside any room")
		return
	}
	c.registry.BroadcastExcept(room, conn.ID(), env.Event, env.Data)
}

// recordAudit writes the entry in the background: lifecycle broadcasts do
// not wait on the audit sink, and a disconnecting sender does not cancel a
// write already in flight.
func (c *Coordinator) recordAudit(ctx context.Context, entry domain.AuditEntry) {
	auditCtx := context.WithoutCancel(ctx)
	go c.audit.Record(auditCtx, &entry)
}
