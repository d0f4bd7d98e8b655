package handlers

import (
	"errors"
	"net/http"

	"github.com/carbonova/carbonova-backend/internal/middleware"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
	"github.com/carbonova/carbonova-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var statusByCode = map[apperrors.Code]int{
	apperrors.CodeValidation:         http.StatusBadRequest,
	apperrors.CodeUnauthorized:       http.StatusUnauthorized,
	apperrors.CodeEmailNotConfirmed:  http.StatusUnauthorized,
	apperrors.CodeForbidden:          http.StatusForbidden,
	apperrors.CodeNotFound:           http.StatusNotFound,
	apperrors.CodeConflict:           http.StatusConflict,
	apperrors.CodeDailyLimitReached:  http.StatusTooManyRequests,
	apperrors.CodeSubmissionBlocked:  http.StatusUnprocessableEntity,
	apperrors.CodePayloadTooLarge:    http.StatusRequestEntityTooLarge,
	apperrors.CodeInsufficientPoints: http.StatusConflict,
	apperrors.CodeVoucherUnavailable: http.StatusConflict,
	apperrors.CodeUpstream:           http.StatusBadGateway,
	apperrors.CodeInternal:           http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an error code
func StatusFor(code apperrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error", "code", "details"}. Errors that are
// not AppErrors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal("Something went wrong. Please try again.", err)
	}

	status := StatusFor(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.Request.URL.Path,
			"code":       appErr.Code,
		}).WithError(err).Error("request failed")
	}
	_ = c.Error(err)

	body := gin.H{"error": appErr.Message, "code": appErr.Code}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": apperrors.CodeValidation})
}

// currentUserID returns the authenticated user or writes a 401
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required", "code": apperrors.CodeUnauthorized})
	}
	return id, ok
}

// objectIDParam parses a path parameter as an ObjectID or writes a 400
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// requestTimezone reads the caller's IANA zone from X-Timezone or ?tz=
func requestTimezone(c *gin.Context) string {
	if tz := c.GetHeader("X-Timezone"); tz != "" {
		return tz
	}
	return c.Query("tz")
}
