package utils

import (
	"testing"

	"github.com/carbonova/carbonova-backend/internal/models"
)

func TestEvaluateSubmissionAllCombinations(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		hasProof := mask&1 != 0
		hasLocation := mask&2 != 0
		capReached := mask&4 != 0

		blocks := EvaluateSubmission(hasProof, hasLocation, capReached, 3)

		allowed := len(blocks) == 0
		wantAllowed := hasProof && hasLocation && !capReached
		if allowed != wantAllowed {
			t.Errorf("proof=%v location=%v cap=%v: allowed=%v, want %v", hasProof, hasLocation, capReached, allowed, wantAllowed)
		}

		reasons := make(map[models.BlockReason]bool)
		for _, b := range blocks {
			reasons[b.Reason] = true
			if b.Message == "" {
				t.Errorf("block %s has no message", b.Reason)
			}
		}
		if reasons[models.BlockProofMissing] != !hasProof ||
			reasons[models.BlockLocationMissing] != !hasLocation ||
			reasons[models.BlockDailyLimitReached] != capReached {
			t.Errorf("proof=%v location=%v cap=%v: unexpected reasons %v", hasProof, hasLocation, capReached, reasons)
		}
	}
}
