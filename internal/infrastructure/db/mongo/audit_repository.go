package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
)

const collectionDealerAudit = "dealer_audit"

// AuditRepository appends dealer change records to an insert-only collection.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionDealerAudit)}
}

func (r *AuditRepository) Record(ctx context.Context, e domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"dealerId": e.DealerID,
		"action":   string(e.Action),
		"at":       e.At.UTC(),
	}
	if e.ActorID != "" {
		doc["actorId"] = e.ActorID
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "dealerId", Value: 1}, {Key: "at", Value: -1}},
	})
	return err
}
