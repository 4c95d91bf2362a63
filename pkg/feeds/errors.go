package feeds

import "errors"

var (
	// ErrNotFound is returned when a package or document doesn't exist in the feed.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrMalformed is returned when a feed response cannot be parsed.
	ErrMalformed = errors.New("malformed feed response")
)
