package apiclient

import (
	"errors"
	"fmt"
)

// ErrNotFound marks an entity the server does not have.
// Get itself reports absence as (nil, nil); callers that must surface it use this.
var ErrNotFound = errors.New("not found")

// TransportError is a failed call: unreachable server, non-2xx status,
// or an envelope with success=false. Status is 0 when no response was received.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 && e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Message, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Message extracts the text to show the user for any client error.
func Message(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return err.Error()
}
