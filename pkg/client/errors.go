package client

import (
	"errors"
	"fmt"
)

var (
	// ErrBaseURL is returned when the API base URL is missing or malformed.
	ErrBaseURL = errors.New("client: base url is required")
	// ErrDataMissing marks a success envelope without a data value.
	ErrDataMissing = errors.New("client: response data missing")
)

// APIError reports a failed call: a transport error, a non-2xx status, an
// undecodable body, an envelope with success=false or one without data.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("client: %s: status %d: %v", e.Op, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("client: %s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("client: %s: status %d", e.Op, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage returns the server-provided message, if any.
func (e *APIError) UserMessage() string { return e.Message }
