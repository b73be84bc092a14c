// Package transport owns the HTTPS exchange with a remote-control device.
//
// Ownership boundary:
// - endpoint + route request construction
// - TLS trust policy (security mode, insecure skip verify, CA bundle)
// - status classification into transport errors
// - caller-side retry backoff helper
//
// The transport never interprets payloads and never retries on its own.
package transport
