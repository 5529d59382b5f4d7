package chat

import (
	"encoding/json"
	"time"

	"github.com/peerbridge/chat-service/internal/domain"
)

// Client-to-server events
const (
	EventJoinSession        = "join-session"
	EventSendMessage        = "send-message"
	EventGetSessionDuration = "get-session-duration"
	EventEndSession         = "end-session"
	EventCallOffer          = "call-offer"
	EventCallAnswer         = "call-answer"
	EventICECandidate       = "ice-candidate"

	EventJoinTicket     = "join-ticket"
	EventSupportMessage = "support-message"
	EventTyping         = "typing"
	EventStopTyping     = "stop-typing"
)

// Server-to-client events
const (
	EventUserJoined      = "user-joined"
	EventReceiveMessage  = "receive-message"
	EventSessionDuration = "session-duration"
	EventSessionEnded    = "session-ended"

	EventUserJoinedTicket      = "user-joined-ticket"
	EventReceiveSupportMessage = "receive-support-message"
)

// Envelope is the wire format for every socket event. Data stays raw until
// the event name selects a payload type; signaling payloads are relayed
// without ever being decoded.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinSessionPayload struct {
	SessionID string      `json:"sessionId" validate:"required"`
	UserID    string      `json:"userId" validate:"required"`
	Role      domain.Role `json:"role" validate:"required,oneof=USER LISTENER ADMIN"`
}

type SendMessagePayload struct {
	SessionID  string      `json:"sessionId" validate:"required"`
	SenderID   string      `json:"senderId" validate:"required"`
	SenderRole domain.Role `json:"senderRole" validate:"required,oneof=USER LISTENER"`
	Message    string      `json:"message" validate:"required"`
}

type SessionRefPayload struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type EndSessionPayload struct {
	SessionID string      `json:"sessionId" validate:"required"`
	UserID    string      `json:"userId" validate:"required"`
	Role      domain.Role `json:"role" validate:"required,oneof=USER LISTENER ADMIN"`
}

type UserJoinedPayload struct {
	UserID    string      `json:"userId"`
	Role      domain.Role `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
}

type ReceiveMessagePayload struct {
	SessionID  string      `json:"sessionId"`
	SenderID   string      `json:"senderId"`
	SenderRole domain.Role `json:"senderRole"`
	Message    string      `json:"message"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type SessionDurationPayload struct {
	Duration int64 `json:"duration"`
}

type SessionEndedPayload struct {
	Duration  int64     `json:"duration"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinTicketPayload struct {
	TicketID string      `json:"ticketId" validate:"required"`
	UserID   string      `json:"userId" validate:"required"`
	Role     domain.Role `json:"role" validate:"required,oneof=USER LISTENER ADMIN"`
}

type SupportMessagePayload struct {
	TicketID   string      `json:"ticketId" validate:"required"`
	SenderID   string      `json:"senderId" validate:"required"`
	SenderRole domain.Role `json:"senderRole" validate:"required,oneof=USER LISTENER ADMIN"`
	Message    string      `json:"message" validate:"required"`
}

type ReceiveSupportMessagePayload struct {
	TicketID   string      `json:"ticketId"`
	SenderID   string      `json:"senderId"`
	SenderRole domain.Role `json:"senderRole"`
	Message    string      `json:"message"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type TypingPayload struct {
	TicketID string `json:"ticketId" validate:"required"`
	UserID   string `json:"userId" validate:"required"`
}
