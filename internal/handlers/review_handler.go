package handlers

import (
	"net/http"
	"strconv"

	"github.com/carbonova/carbonova-backend/internal/models"
	"github.com/carbonova/carbonova-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RejectRequest carries the reason shown to the user
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ReviewHandler handles reviewer HTTP requests
type ReviewHandler struct {
	reviewService services.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// List handles GET /review/activities?status=&limit=
func (h *ReviewHandler) List(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	if err != nil {
		badRequest(c, "limit must be a number")
		return
	}

	activities, err := h.reviewService.List(c.Request.Context(), models.ActivityStatus(c.Query("status")), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// Approve handles POST /review/activities/:id/approve
func (h *ReviewHandler) Approve(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.reviewService.Approve(c.Request.Context(), reviewerID, activityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// Reject handles POST /review/activities/:id/reject
func (h *ReviewHandler) Reject(c *gin.Context) {
	reviewerID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	activity, err := h.reviewService.Reject(c.Request.Context(), reviewerID, activityID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}
