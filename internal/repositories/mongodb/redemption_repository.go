package mongodb

import (
	"context"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.RedemptionRepository = (*RedemptionRepository)(nil)

// RedemptionRepository handles MongoDB operations for Redemption
type RedemptionRepository struct {
	collection *mongo.Collection
}

// NewRedemptionRepository creates a new RedemptionRepository
func NewRedemptionRepository(db *mongo.Database) *RedemptionRepository {
	return &RedemptionRepository{
		collection: db.Collection("redemptions"),
	}
}

// Create inserts a redemption. A reused redemption code yields ErrDuplicate.
func (r *RedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	redemption.ID = primitive.NewObjectID()
	if redemption.RedeemedAt.IsZero() {
		redemption.RedeemedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, redemption)
	return translateError(err)
}

// FindRecentByUser returns a user's newest redemptions first
func (r *RedemptionRepository) FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Redemption, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "redeemed_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	redemptions := []*models.Redemption{}
	if err := cursor.All(ctx, &redemptions); err != nil {
		return nil, err
	}
	return redemptions, nil
}

// ExpirePending marks pending redemptions of the given vouchers as expired
func (r *RedemptionRepository) ExpirePending(ctx context.Context, voucherIDs []primitive.ObjectID) (int64, error) {
	if len(voucherIDs) == 0 {
		return 0, nil
	}
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"voucher_id": bson.M{"$in": voucherIDs}, "status": models.RedemptionStatusPending},
		bson.M{"$set": bson.M{"status": models.RedemptionStatusExpired}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
