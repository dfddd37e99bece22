package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/myapi/auth-api/internal/core/domain"
	"github.com/myapi/auth-api/internal/core/ports"
)

const collectionAuthEvents = "auth_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAuthEvents)}
}

// InsertEvent appends an authentication event to the audit collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"kind":        string(event.Kind),
		"email":       event.Email,
		"timestamp":   event.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.RemoteIP != "" {
		doc["remote_ip"] = event.RemoteIP
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}
