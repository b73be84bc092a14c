package protocol

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeResponse extracts the PacketRemoteResponse mapping from text. Scalars of
// any YAML type are kept as their literal text.
func DecodeResponse(text []byte) (Response, error) {
	var envelope responseEnvelope
	if err := yaml.Unmarshal(text, &envelope); err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if envelope.Response == nil {
		return Response{}, fmt.Errorf("%w: %w", ErrDecode, ErrMissingResponse)
	}
	return *envelope.Response, nil
}

// DecodePacket parses an inbound request body. The device simulator uses it to
// read what clients post.
func DecodePacket(route string, text []byte) (Packet, error) {
	switch route {
	case RouteRegister:
		var envelope struct {
			Packet *RegisterPacket `yaml:"PacketRemoteRegister"`
		}
		if err := yaml.Unmarshal(text, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if envelope.Packet == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrDecode, KeyRegister)
		}
		return *envelope.Packet, nil
	case RouteCommand:
		var envelope struct {
			Packet *CommandPacket `yaml:"PacketRemoteCommand"`
		}
		if err := yaml.Unmarshal(text, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if envelope.Packet == nil {
			return nil, fmt.Errorf("%w: missing %s", ErrDecode, KeyCommand)
		}
		return *envelope.Packet, nil
	default:
		return nil, fmt.Errorf("%w: unknown route %q", ErrDecode, route)
	}
}
