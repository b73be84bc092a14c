// Package device is a local stand-in for the scanner's remote-control server.
//
// It speaks the same YAML packet protocol over HTTPS as the real device:
// POST /register issues client credentials, POST /command applies commands
// and returns either a structured response or, for CAPTURE_VIDEO_FRAME, a
// JPEG frame. GET /health and GET /metrics are served for operators.
package device
