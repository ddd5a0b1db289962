package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidAPIKey       = errors.New("api key is malformed")
	ErrUnsupportedService  = errors.New("unsupported ai service")
	ErrNoServiceConfigured = errors.New("no enabled ai service configured")
	ErrSessionFinished     = errors.New("chat session is finished")
	ErrRateLimited         = errors.New("too many chat requests")
)

// UpstreamError reports a failed provider round trip. Status carries the
// HTTP status (or provider error code) returned by the upstream endpoint.
type UpstreamError struct {
	Provider string
	Status   int
	Msg      string
}

func (e *UpstreamError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s upstream error: http %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s upstream error: http %d: %s", e.Provider, e.Status, e.Msg)
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
