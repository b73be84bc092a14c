// Package protocol owns the remote-control wire contract.
//
// Ownership boundary:
// - register/command packet shapes and their routes
// - YAML packet encoding (block style, 2-space indent)
// - PacketRemoteResponse decoding
// - command vocabulary
package protocol
