package port

import (
	"fmt"
	"time"
)

// IntegrationError is a generic transport or protocol failure talking to
// an external ad platform. Callers may retry up to their attempt cap.
type IntegrationError struct {
	Platform string
	Msg      string
	Err      error
}

func (e *IntegrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s integration error: %s: %v", e.Platform, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s integration error: %s", e.Platform, e.Msg)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

// RateLimitError signals HTTP 429 from a platform. It is transient; the
// caller backs off for the platform-specific delay and treats the call
// as a failed attempt for that path.
type RateLimitError struct {
	Platform   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit exceeded", e.Platform)
}

// AuthenticationError signals HTTP 401. It is not retried and surfaces
// immediately.
type AuthenticationError struct {
	Platform string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed", e.Platform)
}
