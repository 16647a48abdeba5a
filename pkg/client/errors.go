package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrMissingToken is returned when no API credential is configured.
	ErrMissingToken = errors.New("api token is required")
)

// UpstreamError represents a non-success response from the upstream API with
// enough context to identify the failing pipeline stage.
type UpstreamError struct {
	Stage      string
	StatusCode int
	URL        string
	Body       string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s error (status %d): %s: %s",
		e.Stage, e.StatusCode, e.URL, e.Body)
}

// AsUpstream extracts an *UpstreamError from an error chain.
func AsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
