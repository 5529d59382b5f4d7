package domain

import (
	"context"
	"time"
)

// Role identifies the kind of actor participating in a session
type Role string

const (
	RoleUser     Role = "USER"
	RoleListener Role = "LISTENER"
	RoleAdmin    Role = "ADMIN"
)

// ChatMessage is a single message inside a session transcript
type ChatMessage struct {
	SenderID   string    `json:"senderId" bson:"senderId"`
	SenderRole Role      `json:"senderRole" bson:"senderRole"`
	Message    string    `json:"message" bson:"message"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// Transcript is the durable, append-only message log of one session
type Transcript struct {
	SessionID string        `json:"sessionId" bson:"sessionId"`
	Messages  []ChatMessage `json:"messages" bson:"messages"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// TranscriptRepository defines the interface for transcript storage.
// Append must be atomic at the store level: concurrent appends from
// different connections in the same room must not lose messages.
type TranscriptRepository interface {
	Append(ctx context.Context, sessionID string, msg ChatMessage) error
	GetHistory(ctx context.Context, sessionID string) ([]ChatMessage, error)
	Delete(ctx context.Context, sessionID string) error
}
