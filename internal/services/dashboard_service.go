package services

import (
	"context"
	"time"

	"github.com/carbonova/carbonova-backend/internal/config"
	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recentActivitiesLimit is how many activities the dashboard lists
const recentActivitiesLimit = 10

type dashboardService struct {
	profileRepo  repositories.ProfileRepository
	activityRepo repositories.ActivityRepository
	typeRepo     repositories.ActivityTypeRepository
	cfg          config.ActivityConfig
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService implementation
func NewDashboardService(
	profileRepo repositories.ProfileRepository,
	activityRepo repositories.ActivityRepository,
	typeRepo repositories.ActivityTypeRepository,
	cfg config.ActivityConfig,
) DashboardService {
	return &dashboardService{
		profileRepo:  profileRepo,
		activityRepo: activityRepo,
		typeRepo:     typeRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Summary gathers the profile totals, the latest activities and the weekly chart
func (s *dashboardService) Summary(ctx context.Context, userID primitive.ObjectID, timezone string) (*models.DashboardSummary, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "Profile not found.")
	}

	count, err := s.activityRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}

	recent, err := s.activityRepo.FindRecentByUser(ctx, userID, recentActivitiesLimit)
	if err != nil {
		return nil, internalError(err)
	}
	joined, err := s.joinTypes(ctx, recent)
	if err != nil {
		return nil, internalError(err)
	}

	now := s.now()
	loc := utils.ResolveLocation(timezone, s.cfg.Timezone)
	window, err := s.activityRepo.FindByUserSince(ctx, userID, utils.WindowStart(now, loc, utils.ImpactWindowDays))
	if err != nil {
		return nil, internalError(err)
	}

	return &models.DashboardSummary{
		FullName:         profile.FullName,
		TotalPoints:      profile.TotalPoints,
		CarbonSavedKg:    utils.DisplayCarbon(profile.CarbonSavedKg),
		TreesEquivalent:  utils.TreesEquivalent(profile.CarbonSavedKg),
		ActivitiesCount:  count,
		RecentActivities: joined,
		WeeklyImpact:     utils.BucketDaily(window, now, loc, utils.ImpactWindowDays),
	}, nil
}

func (s *dashboardService) joinTypes(ctx context.Context, activities []*models.Activity) ([]*models.ActivityWithType, error) {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, a := range activities {
		if !seen[a.ActivityTypeID] {
			seen[a.ActivityTypeID] = true
			ids = append(ids, a.ActivityTypeID)
		}
	}

	types, err := s.typeRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.ActivityType, len(types))
	for _, t := range types {
		byID[t.ID] = t
	}

	joined := make([]*models.ActivityWithType, 0, len(activities))
	for _, a := range activities {
		joined = append(joined, &models.ActivityWithType{Activity: a, ActivityType: byID[a.ActivityTypeID]})
	}
	return joined, nil
}
