package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	// Client-facing taxonomy of the cart controller.
	ErrCodeNotAuthenticated     = "NOT_AUTHENTICATED"
	ErrCodeRemoteUnavailable    = "REMOTE_UNAVAILABLE"
	ErrCodeMutationRejected     = "MUTATION_REJECTED"
	ErrCodeOrderPlacementFailed = "ORDER_PLACEMENT_FAILED"

	// Server-side codes.
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeDatabaseError = "DATABASE_ERROR"
	ErrCodeOutOfStock    = "OUT_OF_STOCK"
	ErrCodeInvalidStatus = "INVALID_STATUS_TRANSITION"
)

func NotAuthenticatedError(message string) *AppError {
	return NewAppError(ErrCodeNotAuthenticated, message, http.StatusUnauthorized)
}

func RemoteUnavailableError(message string) *AppError {
	return NewAppError(ErrCodeRemoteUnavailable, message, http.StatusServiceUnavailable)
}

func MutationRejectedError(message string) *AppError {
	return NewAppError(ErrCodeMutationRejected, message, http.StatusUnprocessableEntity)
}

func OrderPlacementFailedError(message string) *AppError {
	return NewAppError(ErrCodeOrderPlacementFailed, message, http.StatusUnprocessableEntity)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func OutOfStockError(message string) *AppError {
	return NewAppError(ErrCodeOutOfStock, message, http.StatusUnprocessableEntity)
}

func InvalidStatusError(message string) *AppError {
	return NewAppError(ErrCodeInvalidStatus, message, http.StatusUnprocessableEntity)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Code == code
	}

	return false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
