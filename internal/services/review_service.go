package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultReviewPageSize = 50

type reviewService struct {
	activityRepo repositories.ActivityRepository
	typeRepo     repositories.ActivityTypeRepository
	profileRepo  repositories.ProfileRepository
	ledgerRepo   repositories.PointTransactionRepository
	tx           repositories.Transactor
	now          func() time.Time
}

// NewReviewService creates a new ReviewService implementation
func NewReviewService(
	activityRepo repositories.ActivityRepository,
	typeRepo repositories.ActivityTypeRepository,
	profileRepo repositories.ProfileRepository,
	ledgerRepo repositories.PointTransactionRepository,
	tx repositories.Transactor,
) ReviewService {
	return &reviewService{
		activityRepo: activityRepo,
		typeRepo:     typeRepo,
		profileRepo:  profileRepo,
		ledgerRepo:   ledgerRepo,
		tx:           tx,
		now:          time.Now,
	}
}

// List returns activities in a status, oldest first, joined with their types
func (s *reviewService) List(ctx context.Context, status models.ActivityStatus, limit int64) ([]*models.ActivityWithType, error) {
	if status == "" {
		status = models.ActivityStatusPending
	}
	if !status.Valid() {
		return nil, apperrors.Validation("Status must be pending, approved or rejected.")
	}
	if limit <= 0 {
		limit = defaultReviewPageSize
	}

	activities, err := s.activityRepo.FindByStatus(ctx, status, limit)
	if err != nil {
		return nil, internalError(err)
	}

	ids := make([]primitive.ObjectID, 0, len(activities))
	for _, a := range activities {
		ids = append(ids, a.ActivityTypeID)
	}
	types, err := s.typeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, internalError(err)
	}
	byID := make(map[primitive.ObjectID]*models.ActivityType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}

	out := make([]*models.ActivityWithType, 0, len(activities))
	for _, a := range activities {
		out = append(out, &models.ActivityWithType{Activity: a, ActivityType: byID[a.ActivityTypeID]})
	}
	return out, nil
}

// Approve moves a pending activity to approved and credits its points and
// carbon to the owner, all in one transaction.
func (s *reviewService) Approve(ctx context.Context, reviewerID, activityID primitive.ObjectID) (*models.Activity, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, lookupError(err, "Activity not found.")
	}

	reviewedAt := s.now().UTC()
	update := &models.Activity{
		Status:     models.ActivityStatusApproved,
		ReviewedBy: reviewerID,
		ReviewedAt: &reviewedAt,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.activityRepo.TransitionStatus(ctx, activityID, models.ActivityStatusPending, update); err != nil {
			return err
		}
		if err := s.profileRepo.CreditImpact(ctx, activity.UserID, activity.PointsEarned, activity.CarbonSavedKg); err != nil {
			return err
		}
		return s.ledgerRepo.Create(ctx, &models.PointTransaction{
			UserID:      activity.UserID,
			Delta:       activity.PointsEarned,
			CarbonKg:    activity.CarbonSavedKg,
			Reason:      models.PointReasonActivityApproved,
			ReferenceID: activity.ID,
			CreatedAt:   reviewedAt,
		})
	})
	if err != nil {
		return nil, reviewError(err)
	}

	activity.Status = update.Status
	activity.ReviewedBy = reviewerID
	activity.ReviewedAt = &reviewedAt

	logger.WithFields(logrus.Fields{
		"activity_id": activityID.Hex(),
		"reviewer_id": reviewerID.Hex(),
		"points":      activity.PointsEarned,
	}).Info("Activity approved")
	return activity, nil
}

// Reject moves a pending activity to rejected with a reason
func (s *reviewService) Reject(ctx context.Context, reviewerID, activityID primitive.ObjectID, reason string) (*models.Activity, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.Validation("A rejection reason is required.")
	}

	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, lookupError(err, "Activity not found.")
	}

	reviewedAt := s.now().UTC()
	update := &models.Activity{
		Status:          models.ActivityStatusRejected,
		ReviewedBy:      reviewerID,
		ReviewedAt:      &reviewedAt,
		RejectionReason: reason,
	}
	if err := s.activityRepo.TransitionStatus(ctx, activityID, models.ActivityStatusPending, update); err != nil {
		return nil, reviewError(err)
	}

	activity.Status = update.Status
	activity.ReviewedBy = reviewerID
	activity.ReviewedAt = &reviewedAt
	activity.RejectionReason = reason

	logger.WithFields(logrus.Fields{
		"activity_id": activityID.Hex(),
		"reviewer_id": reviewerID.Hex(),
	}).Info("Activity rejected")
	return activity, nil
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrStatusConflict):
		return apperrors.New(apperrors.CodeConflict, "This activity has already been reviewed.", err)
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NotFound("Activity not found.")
	default:
		return internalError(err)
	}
}
