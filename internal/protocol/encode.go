package protocol

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

const indent = 2

type registerEnvelope struct {
	Packet RegisterPacket `yaml:"PacketRemoteRegister"`
}

type commandEnvelope struct {
	Packet CommandPacket `yaml:"PacketRemoteCommand"`
}

type responseEnvelope struct {
	Response *Response `yaml:"PacketRemoteResponse"`
}

// Encode serializes p under its top-level key and returns the route it must be
// posted to.
func Encode(p Packet) ([]byte, string, error) {
	var envelope any
	switch v := p.(type) {
	case RegisterPacket:
		envelope = registerEnvelope{Packet: v}
	case *RegisterPacket:
		if v == nil {
			return nil, "", fmt.Errorf("%w: %w", ErrSerialization, ErrNilPacket)
		}
		envelope = registerEnvelope{Packet: *v}
	case CommandPacket:
		envelope = commandEnvelope{Packet: v}
	case *CommandPacket:
		if v == nil {
			return nil, "", fmt.Errorf("%w: %w", ErrSerialization, ErrNilPacket)
		}
		envelope = commandEnvelope{Packet: *v}
	default:
		return nil, "", fmt.Errorf("%w: %w", ErrSerialization, ErrNilPacket)
	}

	out, err := marshalBlock(envelope)
	if err != nil {
		return nil, "", err
	}
	return out, p.Route(), nil
}

// EncodeResponse serializes the device-side response packet.
func EncodeResponse(r Response) ([]byte, error) {
	return marshalBlock(responseEnvelope{Response: &r})
}

func marshalBlock(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}
