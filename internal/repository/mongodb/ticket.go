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

const ticketChatCollection = "support_chats"

type ticketChatDoc struct {
	TicketID  string                  `bson:"ticketId"`
	Messages  []domain.SupportMessage `bson:"messages"`
	CreatedAt time.Time               `bson:"createdAt"`
	UpdatedAt time.Time               `bson:"updatedAt"`
}

// TicketChatRepository implements domain.TicketChatRepository with one
// growing document per support ticket.
type TicketChatRepository struct {
	coll *mongo.Collection
}

// NewTicketChatRepository creates a new ticket chat repository
func NewTicketChatRepository(client *Client) *TicketChatRepository {
	return &TicketChatRepository{coll: client.Collection(ticketChatCollection)}
}

// Append adds a message to the ticket's message list, creating the document
// if none exists. Atomic $push with upsert, same contract as transcripts.
func (r *TicketChatRepository) Append(ctx context.Context, ticketID string, msg domain.SupportMessage) error {
	now := time.Now().UTC()

	filter := bson.M{"ticketId": ticketID}
	update := bson.M{
		"$push":        bson.M{"messages": msg},
		"$set":         bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{"ticketId": ticketID, "createdAt": now},
	}

	if _, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to append support message: %w", err)
	}
	return nil
}

// GetHistory returns the ordered message list for a ticket, empty when the
// ticket has no chat yet.
func (r *TicketChatRepository) GetHistory(ctx context.Context, ticketID string) ([]domain.SupportMessage, error) {
	var doc ticketChatDoc
	err := r.coll.FindOne(ctx, bson.M{"ticketId": ticketID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []domain.SupportMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket chat: %w", err)
	}

	if doc.Messages == nil {
		return []domain.SupportMessage{}, nil
	}
	return doc.Messages, nil
}
