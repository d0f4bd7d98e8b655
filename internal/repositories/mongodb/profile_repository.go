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

var _ repositories.ProfileRepository = (*ProfileRepository)(nil)

// ProfileRepository handles MongoDB operations for Profile
type ProfileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		collection: db.Collection("profiles"),
	}
}

// Upsert creates the profile keyed by user id, or refreshes the name of an existing one
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": profile.ID},
		profileUpsertUpdate(profile, now),
		options.Update().SetUpsert(true),
	)
	return err
}

// FindByID finds a profile by user ID
func (r *ProfileRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile); err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

// CreditImpact atomically adds points and carbon to a profile
func (r *ProfileRepository) CreditImpact(ctx context.Context, id primitive.ObjectID, points int64, carbonKg float64) error {
	update := bson.M{
		"$inc": bson.M{"total_points": points, "carbon_saved_kg": carbonKg},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// DeductPoints subtracts points if and only if the balance covers them
func (r *ProfileRepository) DeductPoints(ctx context.Context, id primitive.ObjectID, points int64) error {
	update := bson.M{
		"$inc": bson.M{"total_points": -points},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, deductPointsFilter(id, points), update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrInsufficientPoints
	}
	return nil
}

func profileUpsertUpdate(profile *models.Profile, now time.Time) bson.M {
	set := bson.M{"full_name": profile.FullName, "updated_at": now}
	if profile.AvatarURL != "" {
		set["avatar_url"] = profile.AvatarURL
	}
	return bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"total_points":    int64(0),
			"carbon_saved_kg": 0.0,
			"created_at":      now,
		},
	}
}

func deductPointsFilter(id primitive.ObjectID, points int64) bson.M {
	return bson.M{"_id": id, "total_points": bson.M{"$gte": points}}
}
