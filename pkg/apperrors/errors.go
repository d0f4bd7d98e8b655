package apperrors

import (
	"errors"
	"fmt"
)

// Code classifies an AppError. Handlers translate codes to HTTP statuses.
type Code string

const (
	CodeValidation         Code = "VALIDATION"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeEmailNotConfirmed  Code = "EMAIL_NOT_CONFIRMED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeDailyLimitReached  Code = "DAILY_LIMIT_REACHED"
	CodeSubmissionBlocked  Code = "SUBMISSION_BLOCKED"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeInsufficientPoints Code = "INSUFFICIENT_POINTS"
	CodeVoucherUnavailable Code = "VOUCHER_UNAVAILABLE"
	CodeUpstream           Code = "UPSTREAM"
	CodeInternal           Code = "INTERNAL"
)

type AppError struct {
	Code    Code
	Message string
	Err     error
	// Details carries structured context for the client, e.g. per-condition
	// block reasons of a submission.
	Details interface{}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code Code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, nil)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message, nil)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, err)
}

// CodeOf returns the code of the first AppError in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries an AppError with the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
