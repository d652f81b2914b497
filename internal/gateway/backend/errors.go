package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse marks a 2xx reply whose body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrUnavailable is returned without a request while an endpoint's breaker is open.
	ErrUnavailable = errors.New("backend unavailable")
)

// Error is a non-2xx reply from the backend.
type Error struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not a backend reply.
func StatusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}
