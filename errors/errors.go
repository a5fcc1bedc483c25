package errors

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"time"

	ucerr "github.com/johnquangdev/meeting-pipeline/internal/usecase/errors"
)

// AppError is the error type returned to API clients
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// ErrorCode identifies an error class in API responses
type ErrorCode int32

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1003
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1004
	ErrorCode_CONFLICT         ErrorCode = 1005

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2001

	ErrorCode_MEETING_INVALID_STATUS  ErrorCode = 3000
	ErrorCode_MEETING_RUN_IN_PROGRESS ErrorCode = 3001
	ErrorCode_EXPORT_UNSUPPORTED      ErrorCode = 3002

	ErrorCode_QUEUE_UNAVAILABLE          ErrorCode = 4000
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 4001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "OK",
	ErrorCode_INTERNAL:                   "INTERNAL_ERROR",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHORIZED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_CONFLICT:                   "CONFLICT",
	ErrorCode_AUTH_INVALID_TOKEN:         "INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "TOKEN_EXPIRED",
	ErrorCode_MEETING_INVALID_STATUS:     "INVALID_STATUS",
	ErrorCode_MEETING_RUN_IN_PROGRESS:    "RUN_IN_PROGRESS",
	ErrorCode_EXPORT_UNSUPPORTED:         "UNSUPPORTED_FORMAT",
	ErrorCode_QUEUE_UNAVAILABLE:          "QUEUE_UNAVAILABLE",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "STORAGE_FAILED",
}

// String returns the wire name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_%d", int32(c))
}

// MarshalJSON renders the code by name
func (c ErrorCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now(),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "Authentication required",
		Timestamp: time.Now(),
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid payload",
		Timestamp: time.Now(),
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_TOKEN,
		Message:   "Invalid authentication token",
		Timestamp: time.Now(),
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:   "Authentication token has expired",
		Timestamp: time.Now(),
	}
}

// Meeting Errors
func ErrInvalidStatus(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_INVALID_STATUS,
		Message:   message,
		Timestamp: time.Now(),
	}
}

func ErrRunInProgress(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_MEETING_RUN_IN_PROGRESS,
		Message:   "A processing run is already active for this meeting",
		Timestamp: time.Now(),
	}.WithDetail("meeting_id", meetingID)
}

func ErrUnsupportedFormat(format string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_EXPORT_UNSUPPORTED,
		Message:   "Unsupported export format",
		Timestamp: time.Now(),
	}.WithDetail("format", format)
}

// Integration Errors
func ErrQueueUnavailable(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_QUEUE_UNAVAILABLE,
		Message:   "Job queue is unavailable",
		Timestamp: time.Now(),
	}
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:   fmt.Sprintf("Storage operation failed: %s", operation),
		Timestamp: time.Now(),
	}
}

// FromUsecase maps usecase sentinel errors onto API errors.
// Errors that are already AppError pass through unchanged.
func FromUsecase(err error) error {
	if err == nil {
		return nil
	}

	var appErr AppError
	if stdErrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stdErrors.Is(err, ucerr.ErrNotFound):
		e := ErrNotFound("Resource")
		e.Message = err.Error()
		return e
	case stdErrors.Is(err, ucerr.ErrUnauthorized):
		e := ErrUnauthenticated()
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerr.ErrInvalidStatus):
		return ErrInvalidStatus(err.Error())
	case stdErrors.Is(err, ucerr.ErrRunInProgress):
		e := ErrRunInProgress("")
		e.Details = nil
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerr.ErrUnsupportedFormat):
		e := ErrUnsupportedFormat("")
		e.Details = nil
		e.Raw = err
		return e
	case stdErrors.Is(err, ucerr.ErrInvalidInput):
		return ErrInvalidArgument(err.Error())
	case stdErrors.Is(err, ucerr.ErrEnqueue):
		return ErrQueueUnavailable(err)
	case stdErrors.Is(err, ucerr.ErrStorage):
		return ErrStorageFailed("object storage", err)
	}

	return ErrInternal(err)
}
