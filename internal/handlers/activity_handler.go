package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// MaxFormOverhead is the room a submission body gets on top of the proof file
// for its text fields and multipart framing.
const MaxFormOverhead = 1 << 20

// submissionForm is the multipart form of an activity submission. The proof
// file travels in the "proof" part.
type submissionForm struct {
	ActivityTypeID string   `form:"activity_type_id" binding:"required"`
	Quantity       float64  `form:"quantity"`
	Notes          string   `form:"notes"`
	Latitude       *float64 `form:"latitude"`
	Longitude      *float64 `form:"longitude"`
	Accuracy       *float64 `form:"accuracy"`
	LocationError  string   `form:"location_error"`
	Timezone       string   `form:"timezone"`
}

// ActivityHandler handles activity logging HTTP requests
type ActivityHandler struct {
	activityService services.ActivityService
	maxProofBytes   int64
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService services.ActivityService, maxProofBytes int64) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		maxProofBytes:   maxProofBytes,
	}
}

// ListActivityTypes handles GET /activity-types
func (h *ActivityHandler) ListActivityTypes(c *gin.Context) {
	types, err := h.activityService.ListActivityTypes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity_types": types})
}

// Preview handles POST /activities/preview
func (h *ActivityHandler) Preview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sub, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	preview, err := h.activityService.Preview(c.Request.Context(), userID, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// Submit handles POST /activities
func (h *ActivityHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sub, ok := h.bindSubmission(c)
	if !ok {
		return
	}

	activity, err := h.activityService.Submit(c.Request.Context(), userID, sub)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"activity": activity,
		"message":  fmt.Sprintf("Activity submitted for review. You'll earn %d points once it's approved.", activity.PointsEarned),
	})
}

// ReverseGeocode handles GET /geocode/reverse?lat=&lon=
func (h *ActivityHandler) ReverseGeocode(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		badRequest(c, "lat and lon query parameters must be numbers")
		return
	}

	address, err := h.activityService.ReverseGeocode(c.Request.Context(), lat, lon)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address, "latitude": lat, "longitude": lon})
}

// bindSubmission reads the form fields and the optional proof file. The proof
// is read up to one byte past the limit so oversized files are reported as
// such rather than truncated. Bodies that cannot fit a proof of the allowed
// size are refused before they are parsed.
func (h *ActivityHandler) bindSubmission(c *gin.Context) (*models.ActivitySubmission, bool) {
	maxBody := h.maxProofBytes + MaxFormOverhead
	if c.Request.ContentLength > maxBody {
		respondError(c, errPayloadTooLarge(nil))
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)

	var form submissionForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, errPayloadTooLarge(err))
			return nil, false
		}
		badRequest(c, err.Error())
		return nil, false
	}

	sub := &models.ActivitySubmission{
		ActivityTypeID: form.ActivityTypeID,
		Quantity:       form.Quantity,
		Notes:          form.Notes,
		Location: models.LocationFix{
			Latitude:  form.Latitude,
			Longitude: form.Longitude,
			Accuracy:  form.Accuracy,
			Error:     form.LocationError,
		},
		Timezone: form.Timezone,
	}
	if tz := requestTimezone(c); tz != "" {
		sub.Timezone = tz
	}

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return sub, true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, errPayloadTooLarge(err))
			return nil, false
		}
		badRequest(c, "Could not read the proof file: "+err.Error())
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Could not read the proof file: "+err.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxProofBytes+1))
	if err != nil {
		badRequest(c, "Could not read the proof file: "+err.Error())
		return nil, false
	}
	sub.Proof = data
	sub.ProofFilename = fileHeader.Filename
	return sub, true
}

func errPayloadTooLarge(err error) error {
	return apperrors.New(apperrors.CodePayloadTooLarge, "The request is too large. Proof files must be smaller than the upload limit.", err)
}
