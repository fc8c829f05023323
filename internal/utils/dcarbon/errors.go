package dcarbon

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures where no usable HTTP response arrived.
var ErrTransport = errors.New("dcarbon: transport failure")

// APIError is a server-reported failure. Message is the server's own text and
// is meant to be shown to the user verbatim.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dcarbon api error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("dcarbon api error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the remote API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// UserMessage returns the text a user should see for err.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrTransport) {
		return "Network error. Please check your connection and try again."
	}
	return "Something went wrong. Please try again."
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransport, err)
}
