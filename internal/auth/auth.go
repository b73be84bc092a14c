// Package auth checks the secrets a simulated device hands out and accepts.
//
// Two kinds exist: the scanner secret an operator reads off the device
// screen, and the client credentials the device issues after registration.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator validates one presented secret.
type Validator interface {
	Validate(token string) error
}

// StaticToken accepts exactly one shared secret. An empty Token accepts
// nothing.
type StaticToken struct {
	Token string
}

func (s StaticToken) Validate(token string) error {
	if s.Token == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Credentials issues and remembers client credentials. Safe for concurrent use.
type Credentials struct {
	mu     sync.RWMutex
	issued map[string]struct{}
}

func NewCredentials() *Credentials {
	return &Credentials{issued: make(map[string]struct{})}
}

// Issue returns a fresh credential.
func (c *Credentials) Issue() string {
	credential := uuid.NewString()
	c.mu.Lock()
	c.issued[credential] = struct{}{}
	c.mu.Unlock()
	return credential
}

func (c *Credentials) Validate(token string) error {
	if token == "" {
		return ErrUnauthorized
	}
	c.mu.RLock()
	_, ok := c.issued[token]
	c.mu.RUnlock()
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Revoke forgets credential. Unknown credentials are ignored.
func (c *Credentials) Revoke(credential string) {
	c.mu.Lock()
	delete(c.issued, credential)
	c.mu.Unlock()
}
