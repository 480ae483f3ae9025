package fetch

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetch operations. Callers should use errors.Is to check.
var (
	// ErrNetwork matches every NetworkError
	ErrNetwork = errors.New("network error")
	// ErrHTTPStatus indicates the remote host answered with a non-2xx status
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrBodyTooLarge indicates the response exceeded the configured limit
	ErrBodyTooLarge = errors.New("response body too large")
)

// NetworkError reports a failed fetch of a single URL
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}
