package services

import (
	"context"
	"time"

	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/internal/utils"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/carbonova/carbonova-backend/pkg/storage"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// geocodeTimeout bounds the best-effort address lookup made during submission
const geocodeTimeout = 5 * time.Second

type activityService struct {
	typeRepo     repositories.ActivityTypeRepository
	activityRepo repositories.ActivityRepository
	store        ObjectStore
	geocoder     Geocoder
	cfg          config.ActivityConfig
	now          func() time.Time
}

// evaluation is a checked submission
type evaluation struct {
	preview      *models.SubmissionPreview
	activityType *models.ActivityType
	proof        *utils.ProofFile
}

// NewActivityService creates a new ActivityService implementation
func NewActivityService(
	typeRepo repositories.ActivityTypeRepository,
	activityRepo repositories.ActivityRepository,
	store ObjectStore,
	geocoder Geocoder,
	cfg config.ActivityConfig,
) ActivityService {
	return &activityService{
		typeRepo:     typeRepo,
		activityRepo: activityRepo,
		store:        store,
		geocoder:     geocoder,
		cfg:          cfg,
		now:          time.Now,
	}
}

// ListActivityTypes returns the catalog
func (s *activityService) ListActivityTypes(ctx context.Context) ([]*models.ActivityType, error) {
	types, err := s.typeRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError(err)
	}
	return types, nil
}

// Preview evaluates a submission
func (s *activityService) Preview(ctx context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.SubmissionPreview, error) {
	ev, err := s.evaluate(ctx, userID, sub)
	if err != nil {
		return nil, err
	}
	return ev.preview, nil
}

// Submit stores a pending activity once every requirement holds. The proof is
// uploaded first; if the upload fails nothing is stored.
func (s *activityService) Submit(ctx context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*models.Activity, error) {
	ev, err := s.evaluate(ctx, userID, sub)
	if err != nil {
		return nil, err
	}
	if !ev.preview.Allowed {
		return nil, blockedError(ev.preview.Blocks)
	}

	log := logger.WithFields(logrus.Fields{
		"user_id":          userID.Hex(),
		"activity_type_id": ev.activityType.ID.Hex(),
	})

	var photoURL string
	if ev.proof != nil {
		key := storage.ProofKey(userID.Hex(), ev.proof.Extension)
		photoURL, err = s.store.Upload(ctx, key, ev.proof.ContentType, ev.proof.Data)
		if err != nil {
			log.WithError(err).Error("Proof upload failed")
			return nil, apperrors.New(apperrors.CodeUpstream, "We couldn't upload your proof file. Please try again.", err)
		}
	}

	location := &models.GeoLocation{
		Latitude:  *sub.Location.Latitude,
		Longitude: *sub.Location.Longitude,
		Accuracy:  *sub.Location.Accuracy,
	}
	location.Address = s.lookupAddress(ctx, location.Latitude, location.Longitude, log)

	now := s.now().UTC()
	activity := &models.Activity{
		UserID:         userID,
		ActivityTypeID: ev.activityType.ID,
		Quantity:       sub.Quantity,
		PointsEarned:   ev.preview.PointsEarned,
		CarbonSavedKg:  ev.preview.CarbonSavedKg,
		Notes:          sub.Notes,
		PhotoURL:       photoURL,
		Location:       location,
		Status:         models.ActivityStatusPending,
		SubmittedAt:    now,
		CreatedAt:      now,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		log.WithError(err).Error("Failed to store activity")
		return nil, internalError(err)
	}

	log.WithField("activity_id", activity.ID.Hex()).Info("Activity submitted for review")
	return activity, nil
}

// ReverseGeocode looks up an address on behalf of a client
func (s *activityService) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if !utils.ValidCoordinates(lat, lon) {
		return "", apperrors.Validation("Latitude must be between -90 and 90 and longitude between -180 and 180.")
	}
	address, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return "", apperrors.New(apperrors.CodeUpstream, "Address lookup is unavailable right now.", err)
	}
	return address, nil
}

func (s *activityService) evaluate(ctx context.Context, userID primitive.ObjectID, sub *models.ActivitySubmission) (*evaluation, error) {
	typeID, err := primitive.ObjectIDFromHex(sub.ActivityTypeID)
	if err != nil {
		return nil, apperrors.Validation("Please choose an activity type.")
	}
	if err := utils.ValidateQuantity(sub.Quantity); err != nil {
		return nil, apperrors.Validation("Quantity must be greater than zero.")
	}

	activityType, err := s.typeRepo.FindByID(ctx, typeID)
	if err != nil {
		return nil, lookupError(err, "Activity type not found.")
	}

	loc := utils.ResolveLocation(sub.Timezone, s.cfg.Timezone)
	todayCount, err := s.activityRepo.CountByUserAndTypeSince(ctx, userID, typeID, utils.LocalMidnight(s.now(), loc))
	if err != nil {
		return nil, internalError(err)
	}
	limit := activityType.EffectiveDailyLimit()

	var proof *utils.ProofFile
	var proofBlock *models.SubmissionBlock
	switch {
	case len(sub.Proof) > 0:
		proof, proofBlock = utils.ValidateProofFile(sub.Proof, s.cfg.MaxProofBytes)
	case s.proofRequired(activityType):
		proofBlock = &models.SubmissionBlock{Reason: models.BlockProofMissing}
	}
	locationBlock := utils.CheckLocation(sub.Location)

	blocks := utils.EvaluateSubmission(proofBlock == nil, locationBlock == nil, utils.DailyLimitReached(todayCount, limit), limit)
	for i := range blocks {
		switch {
		case blocks[i].Reason == models.BlockProofMissing && proofBlock.Message != "":
			blocks[i] = *proofBlock
		case blocks[i].Reason == models.BlockLocationMissing:
			blocks[i] = *locationBlock
		}
	}

	return &evaluation{
		preview: &models.SubmissionPreview{
			ActivityType:  activityType,
			PointsEarned:  utils.CalculatePoints(sub.Quantity, activityType),
			CarbonSavedKg: utils.CalculateCarbon(sub.Quantity, activityType),
			TodayCount:    todayCount,
			DailyLimit:    limit,
			Allowed:       len(blocks) == 0,
			Blocks:        blocks,
		},
		activityType: activityType,
		proof:        proof,
	}, nil
}

func (s *activityService) proofRequired(activityType *models.ActivityType) bool {
	return s.cfg.RequireProofForAllTypes || activityType.RequiresPhoto
}

// lookupAddress makes one bounded geocoding attempt. Failures are logged and
// yield an empty address.
func (s *activityService) lookupAddress(ctx context.Context, lat, lon float64, log *logrus.Entry) string {
	if s.geocoder == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	address, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		log.WithError(err).Warn("Reverse geocoding failed")
		return ""
	}
	return address
}

// blockedError reports a refused submission. blocks must not be empty. A
// refusal caused only by the daily limit gets its own code.
func blockedError(blocks []models.SubmissionBlock) error {
	code := apperrors.CodeSubmissionBlocked
	if len(blocks) == 1 && blocks[0].Reason == models.BlockDailyLimitReached {
		code = apperrors.CodeDailyLimitReached
	}
	return apperrors.New(code, blocks[0].Message, nil).WithDetails(blocks)
}
