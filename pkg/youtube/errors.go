package youtube

import (
	"errors"
	"fmt"
)

var (
	// ErrChannelNotFound means the channel lookup returned no items or
	// the channel has no uploads playlist. Not retryable.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrNotFound is the generic upstream 404. Not retryable.
	ErrNotFound = errors.New("upstream resource not found")
)

// InvalidRequestError covers non-retryable upstream 4xx responses
// (quota exceeded, bad key, malformed parameters).
type InvalidRequestError struct {
	Path       string
	StatusCode int
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("youtube: %s rejected with status %d", e.Path, e.StatusCode)
}

// UpstreamError is surfaced once the retry budget for transport
// failures and 5xx responses is exhausted. It wraps the last cause.
type UpstreamError struct {
	Path     string
	Attempts int
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("youtube: %s failed after %d attempts: %v", e.Path, e.Attempts, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ProtocolError means the upstream answered 2xx with a body we could
// not parse.
type ProtocolError struct {
	Path string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("youtube: malformed response from %s: %v", e.Path, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
