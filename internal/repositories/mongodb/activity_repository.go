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

var _ repositories.ActivityRepository = (*ActivityRepository)(nil)

// ActivityRepository handles MongoDB operations for Activity
type ActivityRepository struct {
	collection *mongo.Collection
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
	}
}

// Create inserts a new activity
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if activity.SubmittedAt.IsZero() {
		activity.SubmittedAt = activity.CreatedAt
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return translateError(err)
}

// FindByID finds an activity by ID
func (r *ActivityRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&activity); err != nil {
		return nil, translateError(err)
	}
	return &activity, nil
}

// CountByUserAndTypeSince counts a user's submissions of one type, in any status, created at or after since
func (r *ActivityRepository) CountByUserAndTypeSince(ctx context.Context, userID, activityTypeID primitive.ObjectID, since time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, dailyCountFilter(userID, activityTypeID, since))
}

// CountByUser counts every activity a user has submitted
func (r *ActivityRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID})
}

// FindRecentByUser returns the user's newest activities first
func (r *ActivityRepository) FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Activity, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// FindByUserSince returns the user's activities created at or after since, oldest first
func (r *ActivityRepository) FindByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]*models.Activity, error) {
	filter := bson.M{"user_id": userID, "created_at": bson.M{"$gte": since}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

// FindByStatus returns activities in a status, oldest submission first
func (r *ActivityRepository) FindByStatus(ctx context.Context, status models.ActivityStatus, limit int64) ([]*models.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.find(ctx, bson.M{"status": status}, opts)
}

// TransitionStatus applies the review fields of update when the activity is still in status from
func (r *ActivityRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.ActivityStatus, update *models.Activity) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": reviewSet(update)},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 1 {
		return nil
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if count == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrStatusConflict
}

func (r *ActivityRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.Activity, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	activities := []*models.Activity{}
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func dailyCountFilter(userID, activityTypeID primitive.ObjectID, since time.Time) bson.M {
	return bson.M{
		"user_id":          userID,
		"activity_type_id": activityTypeID,
		"created_at":       bson.M{"$gte": since},
	}
}

func reviewSet(update *models.Activity) bson.M {
	set := bson.M{
		"status":      update.Status,
		"reviewed_by": update.ReviewedBy,
	}
	if update.ReviewedAt != nil {
		set["reviewed_at"] = *update.ReviewedAt
	}
	if update.RejectionReason != "" {
		set["rejection_reason"] = update.RejectionReason
	}
	return set
}
