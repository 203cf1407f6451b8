// Package apperr defines the stable, machine-readable error taxonomy
// surfaced by the HTTP API. Every failure carries a code the presentation
// layer can map to an affordance (e.g. offer "resend verification" on
// EMAIL_NOT_VERIFIED) plus a human-readable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is an application error with a stable code and HTTP status.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FromError extracts an *APIError from an error chain, if present.
func FromError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func NewMissingFields(message string) *APIError {
	return &APIError{Code: "MISSING_FIELDS", Message: message, Status: http.StatusBadRequest}
}

func NewWeakPassword() *APIError {
	return &APIError{Code: "WEAK_PASSWORD", Message: "Password should be at least 6 characters", Status: http.StatusBadRequest}
}

func NewDOBRequired() *APIError {
	return &APIError{Code: "DOB_REQUIRED", Message: "Date of birth is required", Status: http.StatusBadRequest}
}

func NewInvalidDate(message string) *APIError {
	return &APIError{Code: "INVALID_DATE", Message: message, Status: http.StatusBadRequest}
}

// NewAgeRestriction names the minimum age the requested role requires.
func NewAgeRestriction(role string, minAge int) *APIError {
	return &APIError{
		Code:    "AGE_RESTRICTION",
		Message: fmt.Sprintf("You must be at least %d years old to register as a %s", minAge, role),
		Status:  http.StatusBadRequest,
	}
}

func NewUserExists() *APIError {
	return &APIError{Code: "USER_EXISTS", Message: "An account with this email already exists", Status: http.StatusConflict}
}

func NewInvalidEmail() *APIError {
	return &APIError{Code: "INVALID_EMAIL", Message: "Please enter a valid email address", Status: http.StatusBadRequest}
}

func NewInvalidCredentials() *APIError {
	return &APIError{Code: "INVALID_CREDENTIALS", Message: "Invalid login credentials", Status: http.StatusBadRequest}
}

func NewEmailNotVerified() *APIError {
	return &APIError{Code: "EMAIL_NOT_VERIFIED", Message: "Email not confirmed", Status: http.StatusBadRequest}
}

func NewRateLimited() *APIError {
	return &APIError{Code: "RATE_LIMITED", Message: "Too many attempts. Please try again later", Status: http.StatusTooManyRequests}
}

func NewProfileCreationFailed() *APIError {
	return &APIError{Code: "PROFILE_CREATION_FAILED", Message: "Failed to create user profile", Status: http.StatusInternalServerError}
}

func NewChildCreationFailed() *APIError {
	return &APIError{Code: "CHILD_CREATION_FAILED", Message: "Failed to create child record", Status: http.StatusInternalServerError}
}

func NewProfileUpdateFailed() *APIError {
	return &APIError{Code: "PROFILE_UPDATE_FAILED", Message: "Child created but could not be linked to the profile", Status: http.StatusInternalServerError}
}

func NewUnauthorized(message string) *APIError {
	return &APIError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusForbidden}
}

func NewNotAuthenticated() *APIError {
	return &APIError{Code: "NOT_AUTHENTICATED", Message: "Not authenticated", Status: http.StatusUnauthorized}
}

func NewInvalidRole(role string) *APIError {
	return &APIError{Code: "INVALID_ROLE", Message: fmt.Sprintf("Invalid role: %s", role), Status: http.StatusBadRequest}
}

func NewNotFound(what string) *APIError {
	return &APIError{Code: "NOT_FOUND", Message: fmt.Sprintf("%s not found", what), Status: http.StatusNotFound}
}

func NewAuthAPIError(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return &APIError{Code: "AUTH_API_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewOAuthError(message string) *APIError {
	return &APIError{Code: "OAUTH_ERROR", Message: message, Status: http.StatusBadRequest}
}
