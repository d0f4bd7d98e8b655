package services

import (
	"errors"

	"github.com/carbonova/carbonova-backend/internal/repositories"
	"github.com/carbonova/carbonova-backend/pkg/apperrors"
)

// lookupError turns a repository lookup failure into a NOT_FOUND or INTERNAL AppError
func lookupError(err error, notFoundMsg string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	return apperrors.Internal("Something went wrong. Please try again.", err)
}

func internalError(err error) error {
	return apperrors.Internal("Something went wrong. Please try again.", err)
}
