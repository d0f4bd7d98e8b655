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

var _ repositories.ActivityTypeRepository = (*ActivityTypeRepository)(nil)

// ActivityTypeRepository handles MongoDB operations for ActivityType
type ActivityTypeRepository struct {
	collection *mongo.Collection
}

// NewActivityTypeRepository creates a new ActivityTypeRepository
func NewActivityTypeRepository(db *mongo.Database) *ActivityTypeRepository {
	return &ActivityTypeRepository{
		collection: db.Collection("activity_types"),
	}
}

// Create inserts a new activity type
func (r *ActivityTypeRepository) Create(ctx context.Context, activityType *models.ActivityType) error {
	activityType.ID = primitive.NewObjectID()
	activityType.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, activityType)
	return translateError(err)
}

// FindByID finds an activity type by ID
func (r *ActivityTypeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ActivityType, error) {
	var activityType models.ActivityType
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&activityType); err != nil {
		return nil, translateError(err)
	}
	return &activityType, nil
}

// FindAll returns the catalog ordered by name
func (r *ActivityTypeRepository) FindAll(ctx context.Context) ([]*models.ActivityType, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// FindByIDs returns the activity types with the given ids, in no particular order
func (r *ActivityTypeRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.ActivityType, error) {
	if len(ids) == 0 {
		return []*models.ActivityType{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *ActivityTypeRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.ActivityType, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	types := []*models.ActivityType{}
	if err := cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}
