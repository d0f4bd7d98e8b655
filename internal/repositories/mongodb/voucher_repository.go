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

var _ repositories.VoucherRepository = (*VoucherRepository)(nil)

// VoucherRepository handles MongoDB operations for Voucher
type VoucherRepository struct {
	collection *mongo.Collection
}

// NewVoucherRepository creates a new VoucherRepository
func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{
		collection: db.Collection("vouchers"),
	}
}

// Create inserts a new voucher
func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	voucher.ID = primitive.NewObjectID()
	voucher.CreatedAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, voucher)
	return translateError(err)
}

// FindByID finds a voucher by ID
func (r *VoucherRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&voucher); err != nil {
		return nil, translateError(err)
	}
	return &voucher, nil
}

// FindAvailable returns active, in-stock, unexpired vouchers, cheapest first
func (r *VoucherRepository) FindAvailable(ctx context.Context, now time.Time) ([]*models.Voucher, error) {
	opts := options.Find().SetSort(bson.D{{Key: "points_required", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, availableVoucherFilter(now), opts)
}

// FindByIDs returns the vouchers with the given ids, in no particular order
func (r *VoucherRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Voucher, error) {
	if len(ids) == 0 {
		return []*models.Voucher{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// DecrementRemaining takes one unit of stock if the voucher is still available at now
func (r *VoucherRepository) DecrementRemaining(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	filter := availableVoucherFilter(now)
	filter["_id"] = id
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"remaining": -1}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrVoucherUnavailable
	}
	return nil
}

// DeactivateExpired switches off active vouchers whose expiry has passed and returns their ids
func (r *VoucherRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error) {
	filter := expiredVoucherFilter(now)
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	_, err = r.collection.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *VoucherRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.Voucher, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vouchers := []*models.Voucher{}
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

// availableVoucherFilter matches vouchers a user may claim at now. A voucher
// without expires_at never expires.
func availableVoucherFilter(now time.Time) bson.M {
	return bson.M{
		"is_active": true,
		"remaining": bson.M{"$gt": 0},
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": nil},
			bson.M{"expires_at": bson.M{"$gt": now}},
		},
	}
}

func expiredVoucherFilter(now time.Time) bson.M {
	return bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$ne": nil, "$lte": now},
	}
}
