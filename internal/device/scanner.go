package device

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/auth"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
)

const (
	StateIdle     = "IDLE"
	StateScanning = "SCANNING"

	msgUnregistered = "unregistered client"
)

// Settings is a snapshot of the scanner's adjustable state.
type Settings struct {
	Scanning       bool
	RequireStill   bool
	RequireMarker  bool
	ExposureNS     int64
	SensitivityISO int
	Nickname       string
	Uploaded       []string
}

// Scanner holds device state shared by all registered clients.
type Scanner struct {
	secret  auth.Validator
	clients *auth.Credentials

	mu       sync.Mutex
	settings Settings
	frames   uint64
}

func NewScanner(secret string) *Scanner {
	return &Scanner{
		secret:  auth.StaticToken{Token: secret},
		clients: auth.NewCredentials(),
		settings: Settings{
			RequireStill:   true,
			RequireMarker:  true,
			ExposureNS:     10_000_000,
			SensitivityISO: 100,
		},
	}
}

// Register issues a credential when secret matches the one shown on the device.
func (s *Scanner) Register(p protocol.RegisterPacket) protocol.Response {
	if err := s.secret.Validate(p.ScannerSecret); err != nil {
		return failure("invalid scanner secret")
	}
	return success(s.clients.Issue())
}

// Authorized reports whether credential was issued by Register.
func (s *Scanner) Authorized(credential string) bool {
	return s.clients.Validate(credential) == nil
}

func (s *Scanner) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.settings
	out.Uploaded = append([]string(nil), s.settings.Uploaded...)
	return out
}

// Apply runs one non-capture command for an authorized client.
func (s *Scanner) Apply(cmd protocol.Command, value string) protocol.Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd {
	case protocol.CommandStartScan:
		if s.settings.Scanning {
			return failure("already scanning")
		}
		s.settings.Scanning = true
		return success("scan started")
	case protocol.CommandStopScan:
		if !s.settings.Scanning {
			return failure("not scanning")
		}
		s.settings.Scanning = false
		return success("scan stopped")
	case protocol.CommandGetState:
		if s.settings.Scanning {
			return success(StateScanning)
		}
		return success(StateIdle)
	case protocol.CommandRequireStill:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return failure(fmt.Sprintf("invalid boolean %q", value))
		}
		s.settings.RequireStill = v
		return success(fmt.Sprintf("require still %t", v))
	case protocol.CommandRequireMarker:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return failure(fmt.Sprintf("invalid boolean %q", value))
		}
		s.settings.RequireMarker = v
		return success(fmt.Sprintf("require marker %t", v))
	case protocol.CommandExposure:
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || v <= 0 {
			return failure(fmt.Sprintf("invalid exposure %q", value))
		}
		s.settings.ExposureNS = v
		return success(fmt.Sprintf("exposure %d ns", v))
	case protocol.CommandSensitivity:
		v, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || v <= 0 {
			return failure(fmt.Sprintf("invalid sensitivity %q", value))
		}
		s.settings.SensitivityISO = v
		return success(fmt.Sprintf("sensitivity ISO %d", v))
	case protocol.CommandSetNickname:
		name := strings.TrimSpace(value)
		if name == "" {
			return failure("nickname required")
		}
		s.settings.Nickname = name
		return success(name)
	case protocol.CommandUploadRemote:
		name := strings.TrimSpace(value)
		if name == "" {
			return failure("file name required")
		}
		s.settings.Uploaded = append(s.settings.Uploaded, name)
		return success("upload queued: " + name)
	case protocol.CommandGetFile:
		name := strings.TrimSpace(value)
		if name == "" {
			return failure("file name required")
		}
		return success("sending " + name)
	default:
		return failure(fmt.Sprintf("unknown command %q", string(cmd)))
	}
}

func (s *Scanner) nextFrame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return s.frames
}

func success(msg string) protocol.Response {
	return protocol.Response{Status: protocol.StatusSuccess, Message: msg}
}

func failure(msg string) protocol.Response {
	return protocol.Response{Status: protocol.StatusFailure, Message: msg}
}
