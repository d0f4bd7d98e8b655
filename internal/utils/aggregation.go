package utils

import (
	"time"

	"github.com/carbonova/carbonova-backend/internal/models"
)

// ImpactWindowDays is the length of the dashboard chart in days, today included
const ImpactWindowDays = 7

const dayKeyLayout = "2006-01-02"

// WindowStart returns local midnight of the first day of a days-long window ending today
func WindowStart(now time.Time, loc *time.Location, days int) time.Time {
	return LocalMidnight(now, loc).AddDate(0, 0, -(days - 1))
}

// BucketDaily sums carbon and points per local calendar day over the days
// ending today. The result always has one entry per day, oldest first;
// activities outside the window are ignored.
func BucketDaily(activities []*models.Activity, now time.Time, loc *time.Location, days int) []models.DailyImpact {
	start := WindowStart(now, loc, days)

	series := make([]models.DailyImpact, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(dayKeyLayout)
		series[i] = models.DailyImpact{Date: key, Label: day.Weekday().String()[:3]}
		index[key] = i
	}

	for _, a := range activities {
		if a == nil {
			continue
		}
		i, ok := index[a.CreatedAt.In(loc).Format(dayKeyLayout)]
		if !ok {
			continue
		}
		series[i].CarbonKg += a.CarbonSavedKg
		series[i].Points += a.PointsEarned
	}
	return series
}
