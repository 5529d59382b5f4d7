package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peerbridge/chat-service/internal/domain"
)

const transcriptCollection = "transcripts"

// TranscriptRepository implements domain.TranscriptRepository with one
// growing document per session.
type TranscriptRepository struct {
	coll *mongo.Collection
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(client *Client) *TranscriptRepository {
	return &TranscriptRepository{coll: client.Collection(transcriptCollection)}
}

// Append adds a message to the end of the session transcript, creating the
// transcript document if none exists. $push with upsert is a single atomic
// server-side operation, so concurrent appends from different connections
// cannot lose messages.
func (r *TranscriptRepository) Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error {
	now := time.Now().UTC()

	filter := bson.M{"sessionId": sessionID}
	update := bson.M{
		"$push":        bson.M{"messages": msg},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"sessionId": sessionID, "createdAt": now},
	}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// GetHistory returns the ordered message log for a session, empty when no
// transcript exists yet.
func (r *TranscriptRepository) GetHistory(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	var transcript domain.Transcript
	err := r.coll.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&transcript)
	if err == mongo.ErrNoDocuments {
		return []domain.ChatMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	if transcript.Messages == nil {
		return []domain.ChatMessage{}, nil
	}
	return transcript.Messages, nil
}

// Delete removes a session transcript entirely. Administrative use only.
func (r *TranscriptRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"sessionId": sessionID}); err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}
	return nil
}
