// Package errors provides application-level error types carrying a
// machine-readable reason code so clients can react without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the broad class of an error.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation_error"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeInternal     ErrorType = "internal_error"
	ErrorTypeBadRequest   ErrorType = "bad_request"
)

// Reason codes surfaced to clients. Denials are expected outcomes and carry
// enough context for the client to offer a corrective action.
const (
	ReasonInvalidKey         = "invalid_key"
	ReasonKeyExpired         = "key_expired"
	ReasonGracePeriodExpired = "grace_period_expired"
	ReasonModelNotAllowed    = "model_not_allowed"
	ReasonSessionNotFound    = "session_not_found"
	ReasonOrderNotFound      = "order_not_found"
	ReasonAmountMismatch     = "amount_mismatch"
	ReasonInvalidTransition  = "invalid_transition"
	ReasonInvalidPlan        = "invalid_plan"
	ReasonInvalidSignature   = "invalid_signature"
	ReasonRateLimited        = "rate_limited"
)

// AppError represents an application error with additional context.
type AppError struct {
	Type    ErrorType `json:"type"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Code    int       `json:"code"`
	Details string    `json:"details,omitempty"`

	// AllowedModels is set on model-policy denials so the client can render
	// the choices without a second round trip.
	AllowedModels []string `json:"allowed_models,omitempty"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WithReason attaches a machine-readable reason code.
func (e *AppError) WithReason(reason string) *AppError {
	e.Reason = reason
	return e
}

// WithAllowedModels attaches the allowed model set for policy denials.
func (e *AppError) WithAllowedModels(models []string) *AppError {
	e.AllowedModels = models
	return e
}

func newAppError(t ErrorType, code int, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details...)
}

func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details...)
}

func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details...)
}

func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details...)
}

func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details...)
}

func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details...)
}

func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details...)
}

func NewRateLimitedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusTooManyRequests, message, details...).
		WithReason(ReasonRateLimited)
}

// IsAppError checks if the error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

func IsConflictError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeConflict
}

func IsValidationError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// HasReason reports whether the error carries the given reason code.
func HasReason(err error, reason string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Reason == reason
}

// IsDuplicateError checks if the error is a database duplicate key error.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "violates unique constraint") {
		return true
	}
	return false
}
