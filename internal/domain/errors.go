package domain

import (
	"errors"
	"fmt"
)

// ErrMalformedInput signals that markup could not be parsed as a document
// at all. Callers degrade to an empty summary instead of aborting the run.
var ErrMalformedInput = errors.New("markup cannot be parsed as a document")

// NetworkError wraps a fetch failure (timeout, connection error, or a
// non-success status). It is the only error class that terminates a run.
type NetworkError struct {
	URL    string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err carries a NetworkError anywhere in
// its chain.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
