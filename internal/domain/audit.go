package domain

import (
	"context"
	"time"
)

// AuditAction is a significant lifecycle action recorded for traceability
type AuditAction string

const (
	ActionSessionJoined     AuditAction = "SESSION_JOINED"
	ActionSessionEnded      AuditAction = "SESSION_ENDED"
	ActionSupportChatJoined AuditAction = "SUPPORT_CHAT_JOINED"
)

// Entity types referenced by audit entries
const (
	EntitySession = "SESSION"
	EntityTicket  = "TICKET"
)

// AuditEntry is an immutable record of an actor performing an action on an
// entity. Entries are append-only; nothing in this service updates or
// deletes them once written.
type AuditEntry struct {
	ID         string         `json:"id" bson:"_id"`
	ActorID    string         `json:"actorId" bson:"actorId"`
	ActorRole  Role           `json:"actorRole" bson:"actorRole"`
	Action     AuditAction    `json:"action" bson:"action"`
	EntityType string         `json:"entityType" bson:"entityType"`
	EntityID   string         `json:"entityId" bson:"entityId"`
	Metadata   map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
}

// AuditFilter narrows audit queries. Zero-value fields are ignored.
type AuditFilter struct {
	ActorID    string
	Action     AuditAction
	EntityType string
	EntityID   string
}

// AuditRepository is the single entry point for writing and reading audit
// entries. Record never propagates failures to the caller: a chat operation
// must not fail because auditing failed.
type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry)
	Query(ctx context.Context, filter AuditFilter, limit int64) ([]AuditEntry, error)
}
