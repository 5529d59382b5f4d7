package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerbridge/chat-service/internal/domain"
)

const auditCollection = "audit_entries"

const defaultQueryLimit = 100

// AuditRepository implements domain.AuditRepository on an append-only
// collection. Entries are never updated or deleted by this service.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(client *Client) *AuditRepository {
	return &AuditRepository{coll: client.Collection(auditCollection)}
}

// Record persists an audit entry. Failures are logged and swallowed: the
// caller's primary operation must not fail because auditing failed.
func (r *AuditRepository) Record(ctx context.Context, entry *domain.AuditEntry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, entry); err != nil {
		log.Error().
			Err(err).
			Str("actor_id", entry.ActorID).
			Str("action", string(entry.Action)).
			Str("entity_id", entry.EntityID).
			Msg("Failed to record audit entry")
	}
}

// Query returns matching audit entries sorted newest-first. A non-positive
// limit falls back to the default of 100.
func (r *AuditRepository) Query(ctx context.Context, filter domain.AuditFilter, limit int64) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, buildAuditFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []domain.AuditEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

func buildAuditFilter(f domain.AuditFilter) bson.M {
	filter := bson.M{}
	if f.ActorID != "" {
		filter["actorId"] = f.ActorID
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.EntityType != "" {
		filter["entityType"] = f.EntityType
	}
	if f.EntityID != "" {
		filter["entityId"] = f.EntityID
	}
	return filter
}
