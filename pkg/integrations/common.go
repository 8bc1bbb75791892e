package integrations

import (
	"errors"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single download, body included. Catalog shards
// are large, so the limit is generous.
const DefaultTimeout = time.Hour

var (
	// ErrNotFound is returned when a remote resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrTimeout is returned when a request exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
)

// NewHTTPClient creates an HTTP client whose requests, including reading
// the body, are bounded by timeout. A non-positive timeout uses [DefaultTimeout].
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
