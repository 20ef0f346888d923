package nlp

import "errors"

// Common oracle client errors
var (
	// ErrRateLimit indicates the rate limit has been exceeded
	ErrRateLimit = errors.New("rate limit exceeded. Please try again later")

	// ErrEmptyResponse indicates the oracle returned an empty response
	ErrEmptyResponse = errors.New("the oracle returned an empty response")

	// ErrMalformedResponse indicates the oracle's response failed to parse
	// into the expected shape after the bounded repair retry
	ErrMalformedResponse = errors.New("the oracle response did not match the expected shape")

	// ErrInvalidProvider indicates an unknown provider was specified
	ErrInvalidProvider = errors.New("invalid oracle provider specified")
)

// RateLimitError represents a rate limit error with optional custom message
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit exceeded. Please try again later"
	}
	return e.Message
}

// Is implements errors.Is support for RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new rate limit error with optional custom message
func NewRateLimitError(message ...string) *RateLimitError {
	err := &RateLimitError{}
	if len(message) > 0 {
		err.Message = message[0]
	}
	return err
}

// EmptyResponseError represents an empty response error
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	return e.Message
}

// Is implements errors.Is support for EmptyResponseError.
func (e *EmptyResponseError) Is(target error) bool {
	_, ok := target.(*EmptyResponseError)
	return ok
}

// NewEmptyResponseError creates a new empty response error
func NewEmptyResponseError(message string) *EmptyResponseError {
	return &EmptyResponseError{Message: message}
}

// MalformedResponseError carries the raw oracle output that failed shape
// validation, for diagnostics.
type MalformedResponseError struct {
	Message string
	Raw     string
}

func (e *MalformedResponseError) Error() string {
	return e.Message
}

// Is implements errors.Is support for MalformedResponseError.
func (e *MalformedResponseError) Is(target error) bool {
	_, ok := target.(*MalformedResponseError)
	return ok
}

// Unwrap lets errors.Is(err, ErrMalformedResponse) succeed on wrapped values.
func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// NewMalformedResponseError creates a new malformed response error.
func NewMalformedResponseError(message, raw string) *MalformedResponseError {
	return &MalformedResponseError{Message: message, Raw: raw}
}
