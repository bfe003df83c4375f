package ogimage

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by the typed errors below.
var (
	ErrMissingSecret   = errors.New("secret is required")
	ErrMissingIssuer   = errors.New("issuer is required")
	ErrMissingSubject  = errors.New("subject is required")
	ErrNoTransport     = errors.New("no HTTP transport available")
	ErrMissingTitle    = errors.New("title is required")
	ErrInvalidIssuedAt = errors.New("invalid issued-at value")
	ErrTimeout         = errors.New("request timed out")
)

// ConfigError reports a missing secret, issuer, subject, or transport.
// It is always raised before any network I/O.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "ogimage: configuration: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError reports a claim that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ogimage: validation: %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// maxErrorBody bounds how much of a response body is quoted in Error().
const maxErrorBody = 512

// RequestError reports a failed or aborted call to the image service.
//
// StatusCode is zero for transport failures and timeouts.
type RequestError struct {
	StatusCode int
	Body       string
	URL        string
	Timeout    bool
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Timeout:
		return "ogimage: request: " + ErrTimeout.Error()
	case e.StatusCode > 0 && e.Body == "":
		return fmt.Sprintf("ogimage: request failed with status %d", e.StatusCode)
	case e.StatusCode > 0:
		body := e.Body
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody] + "..."
		}
		return fmt.Sprintf("ogimage: request failed with status %d: %s", e.StatusCode, body)
	case e.Err != nil:
		return "ogimage: request failed: " + e.Err.Error()
	default:
		return "ogimage: request failed"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrTimeout) hold for timed-out requests.
func (e *RequestError) Is(target error) bool {
	return e.Timeout && target == ErrTimeout
}

// IsConfigError reports whether err is (or wraps) a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRequestError reports whether err is (or wraps) a *RequestError.
func IsRequestError(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}
