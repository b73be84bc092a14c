package remote

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidImage = errors.New("remote: not a valid image")
	ErrNilImage     = errors.New("remote: nil image")
	ErrNilExchange  = errors.New("remote: nil exchange")
)

// OpError is the single failure shape returned by Session operations. Err
// carries the cause chain: transport, serialization, decode or configuration.
type OpError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *OpError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
