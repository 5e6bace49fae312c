package synapse

import (
	"errors"
	"fmt"
)

var (
	// ErrBodyNotBuffered is returned when the request body is not a BufferedBody
	ErrBodyNotBuffered = errors.New("request body is not buffered")

	// ErrBodyTooLarge is returned when a body exceeds the configured limit
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrFileMoved is returned when opening an upload that was already moved
	ErrFileMoved = errors.New("uploaded file has already been moved")
)

// ContentTypeError reports a request whose Content-Type does not match
type ContentTypeError struct {
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *ContentTypeError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "null"
	}
	return fmt.Sprintf("invalid Content-Type of the request, expects %s, %s given", e.Expected, actual)
}
