// Package httperr defines the HTTP status error shared by all provider clients.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error carries the status line of a non-2xx provider response.
type Error struct {
	Status     int
	StatusText string
}

// New creates an Error for the given status code. If statusText is empty the
// standard text for the code is used.
func New(status int, statusText string) *Error {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return &Error{Status: status, StatusText: statusText}
}

// From creates an Error from a received response.
func From(resp *http.Response) *Error {
	text := http.StatusText(resp.StatusCode)
	if resp.Status != "" {
		// resp.Status is "429 Too Many Requests"; keep only the text part.
		if len(resp.Status) > 4 {
			text = resp.Status[4:]
		}
	}
	return &Error{Status: resp.StatusCode, StatusText: text}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}

// StatusOf returns the HTTP status carried anywhere in err's chain, or 0.
func StatusOf(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
