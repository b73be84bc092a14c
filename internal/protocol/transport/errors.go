package transport

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport              = errors.New("transport: exchange failed")
	ErrConfiguration          = errors.New("transport: invalid configuration")
	ErrInvalidSecurityMode    = errors.New("transport: invalid security mode")
	ErrInsecureSkipNotAllowed = errors.New("transport: insecure skip verify not allowed")
	ErrTLSCAFileRequired      = errors.New("transport: tls ca file required")
	ErrMissingBody            = errors.New("transport: missing response body")
)

const noBody = "No response body"

// Error reports one failed exchange. StatusCode is zero when no response was
// received.
type Error struct {
	URL        string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport: request to %s failed: %v", e.URL, e.Err)
	}
	body := e.Body
	if strings.TrimSpace(body) == "" {
		body = noBody
	}
	return fmt.Sprintf("transport: request failed: status=%d message=%q body=%q", e.StatusCode, e.Status, body)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTransport
}
