package protocol

import "strings"

const (
	KeyRegister = "PacketRemoteRegister"
	KeyCommand  = "PacketRemoteCommand"
	KeyResponse = "PacketRemoteResponse"

	RouteRegister = "/register"
	RouteCommand  = "/command"

	// ContentType tags every request and structured response body.
	ContentType = "application/x-yaml"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Kind names the active packet variant.
type Kind string

const (
	KindRegister Kind = "register"
	KindCommand  Kind = "command"
)

// Packet is one outbound request unit. Implemented only by RegisterPacket and
// CommandPacket.
type Packet interface {
	Kind() Kind
	Route() string
	isPacket()
}

// RegisterPacket requests a client credential from the device.
type RegisterPacket struct {
	ScannerSecret string `yaml:"scanner_secret"`
	Version       int    `yaml:"version"`
}

func (RegisterPacket) Kind() Kind    { return KindRegister }
func (RegisterPacket) Route() string { return RouteRegister }
func (RegisterPacket) isPacket()     {}

// CommandPacket carries one named command for a registered client.
type CommandPacket struct {
	Secret  string  `yaml:"secret"`
	Value   string  `yaml:"value"`
	Command Command `yaml:"command"`
}

func (CommandPacket) Kind() Kind    { return KindCommand }
func (CommandPacket) Route() string { return RouteCommand }
func (CommandPacket) isPacket()     {}

// NewRegisterPacket builds the registration variant.
func NewRegisterPacket(serverSecret string, version int) RegisterPacket {
	return RegisterPacket{ScannerSecret: serverSecret, Version: version}
}

// NewCommandPacket builds the command variant.
func NewCommandPacket(credential string, command Command, value string) CommandPacket {
	return CommandPacket{Secret: credential, Value: value, Command: command}
}

// BuildPacket selects the variant from the credential alone: an empty
// credential yields a RegisterPacket, anything else a CommandPacket.
func BuildPacket(serverSecret, clientCredential string, version int, command Command, value string) Packet {
	if clientCredential == "" {
		return NewRegisterPacket(serverSecret, version)
	}
	return NewCommandPacket(clientCredential, command, value)
}

// Response is the decoded PacketRemoteResponse body.
type Response struct {
	Status  string `yaml:"response"`
	Message string `yaml:"message"`
}

// OK reports whether the device declared success.
func (r Response) OK() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), StatusSuccess)
}
