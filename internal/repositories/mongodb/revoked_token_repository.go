package mongodb

import (
	"context"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.RevokedTokenRepository = (*RevokedTokenRepository)(nil)

// RevokedTokenRepository stores the ids of signed-out tokens. A TTL index
// removes each entry once the token would have expired anyway.
type RevokedTokenRepository struct {
	collection *mongo.Collection
}

// NewRevokedTokenRepository creates a new RevokedTokenRepository
func NewRevokedTokenRepository(db *mongo.Database) *RevokedTokenRepository {
	return &RevokedTokenRepository{
		collection: db.Collection("revoked_tokens"),
	}
}

// Revoke records the token id. Revoking twice is not an error.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": token.ID},
		bson.M{"$set": bson.M{"expires_at": token.ExpiresAt}},
		options.Update().SetUpsert(true),
	)
	return err
}

// IsRevoked reports whether the token id was revoked
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
