package models

// BlockReason identifies one failed submission requirement
type BlockReason string

const (
	BlockProofMissing      BlockReason = "proof_missing"
	BlockProofInvalidType  BlockReason = "proof_invalid_type"
	BlockProofTooLarge     BlockReason = "proof_too_large"
	BlockLocationMissing   BlockReason = "location_missing"
	BlockLocationFailed    BlockReason = "location_failed"
	BlockDailyLimitReached BlockReason = "daily_limit_reached"
)

// SubmissionBlock explains why a submission cannot go ahead
type SubmissionBlock struct {
	Reason    BlockReason `json:"reason"`
	Message   string      `json:"message"`
	Retryable bool        `json:"retryable,omitempty"`
}

// LocationFix is what the client's location service reported: either a
// position or a failure code.
type LocationFix struct {
	Latitude  *float64 `json:"latitude,omitempty" form:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" form:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty" form:"accuracy"`
	Error     string   `json:"error,omitempty" form:"location_error"`
}

// ActivitySubmission carries everything a user sends when logging an activity
type ActivitySubmission struct {
	ActivityTypeID string
	Quantity       float64
	Notes          string
	Location       LocationFix
	Proof          []byte
	ProofFilename  string
	Timezone       string
}

// SubmissionPreview is the outcome of evaluating a submission without storing it
type SubmissionPreview struct {
	ActivityType  *ActivityType     `json:"activity_type"`
	PointsEarned  int64             `json:"points_earned"`
	CarbonSavedKg float64           `json:"carbon_saved_kg"`
	TodayCount    int64             `json:"today_count"`
	DailyLimit    int               `json:"daily_limit"`
	Allowed       bool              `json:"allowed"`
	Blocks        []SubmissionBlock `json:"blocks"`
}
