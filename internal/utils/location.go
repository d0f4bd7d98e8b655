package utils

import (
	"math"

	"github.com/carbonova/carbonova-backend/internal/models"
)

// Location failure codes reported by the client's location service
const (
	LocationPermissionDenied    = "permission_denied"
	LocationPositionUnavailable = "position_unavailable"
	LocationTimeout             = "timeout"
	LocationUnsupported         = "unsupported"
)

// LocationFailureMessage turns a client failure code into remediation text
func LocationFailureMessage(code string) string {
	switch code {
	case LocationPermissionDenied:
		return "Location access was denied. Allow location access for this site in your browser settings, then try again."
	case LocationPositionUnavailable:
		return "Your position could not be determined. Move somewhere with a clearer view of the sky or turn on Wi-Fi, then try again."
	case LocationTimeout:
		return "Getting your location took too long. Please try again."
	case LocationUnsupported:
		return "Your device or browser does not support location services. Try a different browser or device."
	default:
		return "We couldn't get your location. Please try again."
	}
}

// CheckLocation validates a reported fix. It returns nil for a usable fix and
// otherwise a block explaining what is missing or what went wrong.
func CheckLocation(fix models.LocationFix) *models.SubmissionBlock {
	if fix.Error != "" {
		return &models.SubmissionBlock{
			Reason:    models.BlockLocationFailed,
			Message:   LocationFailureMessage(fix.Error),
			Retryable: true,
		}
	}
	if fix.Latitude == nil || fix.Longitude == nil || fix.Accuracy == nil {
		return &models.SubmissionBlock{Reason: models.BlockLocationMissing, Message: msgLocationMissing, Retryable: true}
	}
	lat, lon, acc := *fix.Latitude, *fix.Longitude, *fix.Accuracy
	if !inRange(lat, -90, 90) || !inRange(lon, -180, 180) || math.IsNaN(acc) || math.IsInf(acc, 0) || acc < 0 {
		return &models.SubmissionBlock{Reason: models.BlockLocationMissing, Message: "The reported location is not valid. Please try again.", Retryable: true}
	}
	return nil
}

// ValidCoordinates reports whether lat and lon are on the globe
func ValidCoordinates(lat, lon float64) bool {
	return inRange(lat, -90, 90) && inRange(lon, -180, 180)
}

func inRange(v, min, max float64) bool {
	return !math.IsNaN(v) && v >= min && v <= max
}
