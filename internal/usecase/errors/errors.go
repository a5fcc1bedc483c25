package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// Pipeline errors
var (
	ErrMissingTranscript     = errors.New("no transcript text found for summarization")
	ErrTranscriptionService  = errors.New("transcription service error")
	ErrSummarization         = errors.New("summarization failed")
	ErrUnsupportedFormat     = errors.New("unsupported export format")
	ErrInvalidPayload        = errors.New("invalid task payload")
	ErrTestFailure           = errors.New("TEST FAILURE: meeting title contains FAIL")
	ErrUnknownTask           = errors.New("unknown task")
	ErrRecordingNotAvailable = errors.New("meeting has no recording object")
)

// Meeting lifecycle errors
var (
	ErrInvalidStatus = errors.New("invalid meeting status")
	ErrRunInProgress = errors.New("processing run already in progress")
)

// Infrastructure errors
var (
	ErrEnqueue = errors.New("failed to enqueue task")
	ErrStorage = errors.New("object storage error")
)

// IsPermanent reports whether redelivering the task can never succeed
func IsPermanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.Is(err, ErrUnknownTask)
}
