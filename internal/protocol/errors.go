package protocol

import "errors"

var (
	ErrSerialization   = errors.New("protocol: packet serialization failed")
	ErrDecode          = errors.New("protocol: decode failed")
	ErrMissingResponse = errors.New("protocol: missing PacketRemoteResponse")
	ErrNilPacket       = errors.New("protocol: nil packet")
)
