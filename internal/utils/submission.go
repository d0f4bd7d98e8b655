package utils

import (
	"fmt"

	"github.com/carbonova/carbonova-backend/internal/models"
)

const (
	msgProofMissing     = "Please attach a photo or video as proof of your activity."
	msgLocationMissing  = "Please share your location so we can verify your activity."
	msgDailyLimitFormat = "You've reached today's limit of %d submissions for this activity. Try again tomorrow."
)

// EvaluateSubmission returns one block per unmet requirement. An empty result
// means the submission may go ahead.
func EvaluateSubmission(hasProof, hasLocation, dailyLimitReached bool, dailyLimit int) []models.SubmissionBlock {
	blocks := []models.SubmissionBlock{}
	if !hasProof {
		blocks = append(blocks, models.SubmissionBlock{Reason: models.BlockProofMissing, Message: msgProofMissing})
	}
	if !hasLocation {
		blocks = append(blocks, models.SubmissionBlock{Reason: models.BlockLocationMissing, Message: msgLocationMissing})
	}
	if dailyLimitReached {
		blocks = append(blocks, models.SubmissionBlock{
			Reason:  models.BlockDailyLimitReached,
			Message: fmt.Sprintf(msgDailyLimitFormat, dailyLimit),
		})
	}
	return blocks
}
