package models

// DailyImpact is one day of the dashboard chart
type DailyImpact struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	CarbonKg float64 `json:"carbon_kg"`
	Points   int64   `json:"points"`
}

// DashboardSummary is the dashboard payload
type DashboardSummary struct {
	FullName         string              `json:"full_name"`
	TotalPoints      int64               `json:"total_points"`
	CarbonSavedKg    float64             `json:"carbon_saved_kg"`
	TreesEquivalent  int64               `json:"trees_equivalent"`
	ActivitiesCount  int64               `json:"activities_count"`
	RecentActivities []*ActivityWithType `json:"recent_activities"`
	WeeklyImpact     []DailyImpact       `json:"weekly_impact"`
}
