package transport

import (
	"strings"
	"time"
)

const (
	DefaultEndpoint       = "https://localhost:3003"
	DefaultRequestTimeout = 10 * time.Second
)

type SecurityMode string

const (
	SecurityModeDevelopment SecurityMode = "development"
	SecurityModeProduction  SecurityMode = "production"
)

// TLSConfig controls how the device certificate is trusted.
type TLSConfig struct {
	// InsecureSkipVerify accepts any server certificate and hostname. Devices
	// ship self-signed certificates, so the development default enables it.
	InsecureSkipVerify bool
	CAFile             string
	ServerName         string
}

// BackoffConfig defines caller-side retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines one device endpoint and its exchange policy.
type Config struct {
	Endpoint       string
	RequestTimeout time.Duration
	SecurityMode   SecurityMode
	TLS            TLSConfig
	Backoff        BackoffConfig
}

// DefaultConfig returns the device-compatible defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:       DefaultEndpoint,
		RequestTimeout: DefaultRequestTimeout,
		SecurityMode:   SecurityModeDevelopment,
		TLS: TLSConfig{
			InsecureSkipVerify: true,
		},
		Backoff: BackoffConfig{
			InitialDelay: 250 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     5 * time.Second,
			Jitter:       true,
		},
	}
}

// WithDefaults fills zero-valued timing fields. The endpoint is left as given.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if strings.TrimSpace(string(c.SecurityMode)) == "" {
		c.SecurityMode = def.SecurityMode
	}
	if c.Backoff.InitialDelay <= 0 {
		c.Backoff.InitialDelay = def.Backoff.InitialDelay
	}
	if c.Backoff.Multiplier <= 0 {
		c.Backoff.Multiplier = def.Backoff.Multiplier
	}
	if c.Backoff.MaxDelay <= 0 {
		c.Backoff.MaxDelay = def.Backoff.MaxDelay
	}
	return c
}
