package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write
	ErrDuplicate = errors.New("duplicate key")
	// ErrInsufficientPoints is returned when a conditional point deduction does not match
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrVoucherUnavailable is returned when a voucher is inactive or out of stock
	ErrVoucherUnavailable = errors.New("voucher unavailable")
	// ErrStatusConflict is returned when a status transition finds an unexpected current status
	ErrStatusConflict = errors.New("status conflict")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByConfirmationToken(ctx context.Context, token string) (*models.User, error)
	MarkEmailConfirmed(ctx context.Context, id primitive.ObjectID) error
}

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	// Upsert creates the profile if missing and refreshes its name. Totals are only set on insert.
	Upsert(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	CreditImpact(ctx context.Context, id primitive.ObjectID, points int64, carbonKg float64) error
	// DeductPoints subtracts points only while the balance covers them.
	DeductPoints(ctx context.Context, id primitive.ObjectID, points int64) error
}

// ActivityTypeRepository defines the interface for activity catalog operations
type ActivityTypeRepository interface {
	Create(ctx context.Context, activityType *models.ActivityType) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ActivityType, error)
	FindAll(ctx context.Context) ([]*models.ActivityType, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.ActivityType, error)
}

// ActivityRepository defines the interface for activity data operations
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Activity, error)
	CountByUserAndTypeSince(ctx context.Context, userID, activityTypeID primitive.ObjectID, since time.Time) (int64, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Activity, error)
	FindByUserSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]*models.Activity, error)
	FindByStatus(ctx context.Context, status models.ActivityStatus, limit int64) ([]*models.Activity, error)
	// TransitionStatus moves an activity out of status from. It returns ErrStatusConflict when
	// the stored status differs.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from models.ActivityStatus, update *models.Activity) error
}

// VoucherRepository defines the interface for voucher data operations
type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error)
	FindAvailable(ctx context.Context, now time.Time) ([]*models.Voucher, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Voucher, error)
	// DecrementRemaining takes one unit of stock from an active, unexpired voucher.
	DecrementRemaining(ctx context.Context, id primitive.ObjectID, now time.Time) error
	DeactivateExpired(ctx context.Context, now time.Time) ([]primitive.ObjectID, error)
}

// RedemptionRepository defines the interface for redemption data operations
type RedemptionRepository interface {
	Create(ctx context.Context, redemption *models.Redemption) error
	FindRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]*models.Redemption, error)
	ExpirePending(ctx context.Context, voucherIDs []primitive.ObjectID) (int64, error)
}

// PointTransactionRepository defines the interface for point transaction operations
type PointTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointTransaction) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.PointTransaction, error)
}

// RevokedTokenRepository records signed-out access tokens
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Transactor runs fn so that every repository write made with the ctx it receives
// commits or aborts together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
