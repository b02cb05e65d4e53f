package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFileTooLarge         = errors.New("file exceeds maximum allowed size")
	ErrDisallowedFileType   = errors.New("disallowed file type")
	ErrJobNotFound          = errors.New("job not found")
	ErrJobFinished          = errors.New("job is already in a terminal state")
	ErrRecognitionFailed    = errors.New("text recognition failed")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrEmptyBatch           = errors.New("batch contains no files")
)

type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s",
		e.Field, e.Value, e.Message)
}

type RetryableError struct {
	Err     error
	Message string
}

func (e RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %s - %s", e.Message, e.Err.Error())
}

func (e RetryableError) Unwrap() error {
	return e.Err
}

func NewRetryableError(err error, message string) error {
	return RetryableError{
		Err:     err,
		Message: message,
	}
}

// IsRetryable reports whether err (or anything it wraps) is a RetryableError.
func IsRetryable(err error) bool {
	var re RetryableError
	return errors.As(err, &re)
}
