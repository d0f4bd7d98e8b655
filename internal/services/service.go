package services

import (
	"context"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/pkg/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService defines the interface for identity operations
type AuthService interface {
	// SignUp creates an account and its profile
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.User, error)

	// SignIn checks credentials and issues an access token
	SignIn(ctx context.Context, req *models.SignInRequest) (*models.Session, error)

	// SignOut revokes the token with the given id until it expires
	SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error

	// CurrentUser returns the signed-in user with their profile
	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.CurrentUser, error)

	// ConfirmEmail marks the account holding token as confirmed
	ConfirmEmail(ctx context.Context, token string) error

	// IsRevoked reports whether a token id was signed out
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ActivityService defines the interface for logging activities
type ActivityService interface {
	ListActivityTypes(ctx context.Context) ([]*models.ActivityType, error)

	// Preview evaluates a submission without uploading or storing anything
	Preview(ctx context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.SubmissionPreview, error)

	// Submit validates, uploads the proof and stores a pending activity
	Submit(ctx context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.Activity, error)

	// ReverseGeocode looks up an address for a coordinate
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// DashboardService defines the interface for the dashboard view
type DashboardService interface {
	Summary(ctx context.Context, userID primitive.ObjectID, timezone string) (*models.DashboardSummary, error)
}

// RewardService defines the interface for vouchers and redemptions
type RewardService interface {
	ListVouchers(ctx context.Context, userID primitive.ObjectID) (*models.VoucherCatalog, error)
	Redeem(ctx context.Context, userID, voucherID primitive.ObjectID) (*models.RedemptionReceipt, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]*models.RedemptionWithVoucher, error)
	PointHistory(ctx context.Context, userID primitive.ObjectID) ([]*models.PointTransaction, error)
}

// ReviewService defines the interface for reviewing submitted activities
type ReviewService interface {
	List(ctx context.Context, status models.ActivityStatus, limit int64) ([]*models.ActivityWithType, error)
	Approve(ctx context.Context, reviewerID, activityID primitive.ObjectID) (*models.Activity, error)
	Reject(ctx context.Context, reviewerID, activityID primitive.ObjectID, reason string) (*models.Activity, error)
}

// CatalogService defines the interface for administering the catalogs
type CatalogService interface {
	CreateActivityType(ctx context.Context, activityType *models.ActivityType) (*models.ActivityType, error)
	CreateVoucher(ctx context.Context, voucher *models.Voucher) (*models.Voucher, error)
}

// ExpiryService retires vouchers past their expiry
type ExpiryService interface {
	ExpireVouchers(ctx context.Context) (*models.ExpiryResult, error)
}

// ObjectStore stores proof files
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body []byte) (string, error)
}

// Geocoder turns coordinates into an address
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(userID, email, role string) (string, *jwt.Claims, error)
}
