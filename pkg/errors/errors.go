package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound               = "NOT_FOUND"
	CodeBadRequest             = "BAD_REQUEST"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeNotAuthorized          = "NOT_AUTHORIZED"
	CodeConflict               = "CONFLICT"
	CodeInternal               = "INTERNAL_ERROR"
	CodeTooManyRequests        = "TOO_MANY_REQUESTS"
	CodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	CodeAlreadyProcessed       = "ALREADY_PROCESSED"
	CodeQuoteNotPending        = "QUOTE_NOT_PENDING"
	CodeInsufficientContext    = "INSUFFICIENT_CONTEXT"
	CodeInsufficientCredit     = "INSUFFICIENT_CREDIT"
	CodeRoomReadOnly           = "ROOM_READ_ONLY"
	CodeNotImplemented         = "NOT_IMPLEMENTED"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Details interface{}
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// CreditShortfall is attached to INSUFFICIENT_CREDIT so clients can suggest a top-up.
type CreditShortfall struct {
	Required int64 `json:"required"`
	Current  int64 `json:"current"`
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

// NotAuthorized means the caller is authenticated but does not own the
// resource or lacks the role the action needs.
func NotAuthorized(message string) *AppError {
	return &AppError{
		Code:    CodeNotAuthorized,
		Message: message,
		Status:  http.StatusForbidden,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

func InvalidStateTransition(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidStateTransition,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func AlreadyProcessed(message string) *AppError {
	return &AppError{
		Code:    CodeAlreadyProcessed,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func QuoteNotPending(status string) *AppError {
	return &AppError{
		Code:    CodeQuoteNotPending,
		Message: fmt.Sprintf("Quote is %s, only pending quotes can be processed", status),
		Status:  http.StatusConflict,
	}
}

func InsufficientContext(message string) *AppError {
	return &AppError{
		Code:    CodeInsufficientContext,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
	}
}

func InsufficientCredit(required, current int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientCredit,
		Message: fmt.Sprintf("Insufficient credit: %d required, %d available", required, current),
		Status:  http.StatusPaymentRequired,
		Details: CreditShortfall{Required: required, Current: current},
	}
}

func RoomReadOnly(message string) *AppError {
	return &AppError{
		Code:    CodeRoomReadOnly,
		Message: message,
		Status:  http.StatusConflict,
	}
}

func NotImplemented(message string) *AppError {
	return &AppError{
		Code:    CodeNotImplemented,
		Message: message,
		Status:  http.StatusNotImplemented,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the AppError from err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
