package domain

import (
	"context"
	"time"
)

// SupportMessage is a single message inside a support-ticket chat
type SupportMessage struct {
	SenderID   string    `json:"senderId" bson:"senderId"`
	SenderRole Role      `json:"senderRole" bson:"senderRole"`
	Message    string    `json:"message" bson:"message"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// TicketChatRepository stores per-ticket message logs. Same append-only
// contract as TranscriptRepository, keyed by ticket instead of session.
type TicketChatRepository interface {
	Append(ctx context.Context, ticketID string, msg SupportMessage) error
	GetHistory(ctx context.Context, ticketID string) ([]SupportMessage, error)
}
