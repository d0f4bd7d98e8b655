package utils

import (
	"fmt"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/gabriel-vasile/mimetype"
)

// AllowedProofTypes is the image and video allow-list for proof files
var AllowedProofTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/gif",
	"image/heic",
	"image/heif",
	"video/mp4",
	"video/quicktime",
	"video/webm",
}

// ProofFile is a proof upload that passed validation
type ProofFile struct {
	Data        []byte
	ContentType string
	Extension   string
}

// ValidateProofFile sniffs the content type of data and checks it against the
// allow-list and maxBytes. The client-declared type is never trusted.
func ValidateProofFile(data []byte, maxBytes int64) (*ProofFile, *models.SubmissionBlock) {
	if len(data) == 0 {
		return nil, &models.SubmissionBlock{Reason: models.BlockProofMissing, Message: msgProofMissing}
	}
	if int64(len(data)) > maxBytes {
		return nil, &models.SubmissionBlock{
			Reason:  models.BlockProofTooLarge,
			Message: fmt.Sprintf("Proof file must be %s or smaller.", humanBytes(maxBytes)),
		}
	}

	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if mimetype.EqualsAny(m.String(), AllowedProofTypes...) {
			return &ProofFile{Data: data, ContentType: m.String(), Extension: m.Extension()}, nil
		}
	}
	return nil, &models.SubmissionBlock{
		Reason:  models.BlockProofInvalidType,
		Message: fmt.Sprintf("Files of type %s are not accepted. Please upload a photo or video.", mtype.String()),
	}
}

func humanBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
