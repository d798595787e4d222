package apperror

import (
	"errors"
	"net/http"
)

// Kind separates errors by where they were detected and whether state was touched.
type Kind string

const (
	KindGeneric    Kind = "generic"
	KindValidation Kind = "validation"
	KindPolicy     Kind = "policy"
	KindRemote     Kind = "remote"
)

// Outcome is the classification handed to notification collaborators.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeValidationError Outcome = "validation_error"
	OutcomePolicyViolation Outcome = "policy_violation"
	OutcomeServerError     Outcome = "server_error"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind,omitempty"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Kind: KindGeneric, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindGeneric, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindGeneric, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindGeneric, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindGeneric, Message: "Internal server error"}
	ErrInvalidToken   = &AppError{Code: http.StatusUnauthorized, Kind: KindGeneric, Message: "Invalid token"}
	ErrTokenExpired   = &AppError{Code: http.StatusUnauthorized, Kind: KindGeneric, Message: "Token has expired"}
	ErrInFlight       = &AppError{Code: http.StatusConflict, Kind: KindPolicy, Message: "Action already in progress"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindGeneric,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewFieldValidationError is a validation error about a single field.
func NewFieldValidationError(field, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: message,
		Errors:  []FieldError{{Field: field, Message: message}},
	}
}

// NewPolicyViolation reports an action the current record state does not allow.
func NewPolicyViolation(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindPolicy,
		Message: message,
	}
}

// NewRemoteError wraps a failure from the persistence collaborator.
// The collaborator's own status and detail are kept when it provided them.
func NewRemoteError(err error) *AppError {
	if err == nil {
		return nil
	}
	remote := &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindRemote,
		Message: err.Error(),
		cause:   err,
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		remote.Code = appErr.Code
		remote.Errors = appErr.Errors
	}
	return remote
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindGeneric,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindGeneric,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindGeneric,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindGeneric,
		Message: err.Error(),
		cause:   err,
	}
}

// Classify maps an error onto the outcome reported to notification collaborators.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return OutcomeServerError
	}
	switch appErr.Kind {
	case KindRemote:
		return OutcomeServerError
	case KindPolicy:
		return OutcomePolicyViolation
	case KindValidation:
		return OutcomeValidationError
	}
	if appErr.Code >= http.StatusBadRequest && appErr.Code < http.StatusInternalServerError {
		return OutcomeValidationError
	}
	return OutcomeServerError
}
