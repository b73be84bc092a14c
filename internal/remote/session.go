package remote

import (
	"context"
	"image"
	"strconv"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol/transport"
	"github.com/rs/zerolog/log"
)

// ProtocolVersion is sent in every registration packet.
const ProtocolVersion = 0

type State int

const (
	StateUnregistered State = iota
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	default:
		return "unregistered"
	}
}

// Config binds a session to one device.
type Config struct {
	Transport       transport.Config
	ProtocolVersion int
}

func DefaultConfig() Config {
	return Config{
		Transport:       transport.DefaultConfig(),
		ProtocolVersion: ProtocolVersion,
	}
}

// Session holds the per-device connection state: target endpoint, issued
// credential and the last structured response.
type Session struct {
	exchange transport.Exchange
	version  int

	state      State
	credential string
	last       protocol.Response
	hasLast    bool
}

// New builds a session over an HTTPS transport.
func New(cfg Config) (*Session, error) {
	tr, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, &OpError{Op: "new session", Endpoint: cfg.Transport.Endpoint, Err: err}
	}
	return NewWithExchange(tr, cfg.ProtocolVersion)
}

// NewWithExchange builds a session over any exchange implementation.
func NewWithExchange(exchange transport.Exchange, version int) (*Session, error) {
	if exchange == nil {
		return nil, &OpError{Op: "new session", Err: ErrNilExchange}
	}
	return &Session{exchange: exchange, version: version}, nil
}

// SetEndpoint retargets the session when its exchange supports it. The
// credential is kept.
func (s *Session) SetEndpoint(endpoint string) {
	if e, ok := s.exchange.(interface{ SetEndpoint(string) }); ok {
		e.SetEndpoint(endpoint)
	}
}

func (s *Session) Endpoint() string {
	if e, ok := s.exchange.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return ""
}

func (s *Session) State() State {
	return s.state
}

// Credential returns the client credential. After a failed registration it
// holds the device's failure message; check Status before trusting it.
func (s *Session) Credential() string {
	return s.credential
}

// Status returns the status of the last structured response, or "" before
// the first exchange.
func (s *Session) Status() string {
	return s.last.Status
}

// Message returns the message of the last structured response.
func (s *Session) Message() string {
	return s.last.Message
}

// LastResponse returns the most recent structured response.
func (s *Session) LastResponse() (protocol.Response, bool) {
	return s.last, s.hasLast
}

// Register requests a client credential with the scanner secret displayed on
// the device. The response message is copied into the credential whatever
// the status; only a success status moves the session to StateRegistered.
func (s *Session) Register(ctx context.Context, serverSecret string) error {
	resp, err := s.roundTrip(ctx, "register", protocol.NewRegisterPacket(serverSecret, s.version))
	if err != nil {
		return err
	}
	s.credential = resp.Message
	if resp.OK() {
		s.state = StateRegistered
		log.Info().Str("endpoint", s.Endpoint()).Msg("remote session registered")
		return nil
	}
	s.state = StateUnregistered
	log.Warn().
		Str("endpoint", s.Endpoint()).
		Str("status", resp.Status).
		Str("message", resp.Message).
		Msg("remote registration rejected")
	return nil
}

// Command sends one named command with the held credential. It is sent even
// when the session is unregistered; the device is expected to reject it.
func (s *Session) Command(ctx context.Context, name protocol.Command, value string) error {
	if s.state != StateRegistered {
		log.Debug().Str("command", name.String()).Msg("remote command issued while unregistered")
	}
	_, err := s.roundTrip(ctx, "command "+name.String(), protocol.NewCommandPacket(s.credential, name, value))
	return err
}

// CaptureFrame grabs one frame from the device video stream. The last
// structured response is left untouched.
func (s *Session) CaptureFrame(ctx context.Context) (image.Image, error) {
	op := "capture frame"
	res, err := s.send(ctx, op, protocol.NewCommandPacket(s.credential, protocol.CommandCaptureVideoFrame, ""))
	if err != nil {
		return nil, err
	}
	img, format, err := DecodeImage(res.Body)
	if err != nil {
		return nil, s.fail(op, err)
	}
	b := img.Bounds()
	log.Debug().Str("format", format).Int("width", b.Dx()).Int("height", b.Dy()).Msg("remote frame captured")
	return img, nil
}

// Disconnect forgets the credential without contacting the device.
func (s *Session) Disconnect() {
	s.credential = ""
	s.state = StateUnregistered
}

func (s *Session) StartScan(ctx context.Context) error {
	return s.Command(ctx, protocol.CommandStartScan, "")
}

func (s *Session) StopScan(ctx context.Context) error {
	return s.Command(ctx, protocol.CommandStopScan, "")
}

func (s *Session) GetState(ctx context.Context) error {
	return s.Command(ctx, protocol.CommandGetState, "")
}

// SetStillnessRequired toggles whether the camera must be still before scanning.
func (s *Session) SetStillnessRequired(ctx context.Context, required bool) error {
	return s.Command(ctx, protocol.CommandRequireStill, strconv.FormatBool(required))
}

// SetMarkerRequired toggles whether a QR marker must be visible before scanning.
func (s *Session) SetMarkerRequired(ctx context.Context, required bool) error {
	return s.Command(ctx, protocol.CommandRequireMarker, strconv.FormatBool(required))
}

// SetCameraExposure sets the sensor exposure time (shutter speed) in nanoseconds.
func (s *Session) SetCameraExposure(ctx context.Context, exposureNS int64) error {
	return s.Command(ctx, protocol.CommandExposure, strconv.FormatInt(exposureNS, 10))
}

// SetCameraSensitivity sets the sensor sensitivity (ISO).
func (s *Session) SetCameraSensitivity(ctx context.Context, iso int) error {
	return s.Command(ctx, protocol.CommandSensitivity, strconv.Itoa(iso))
}

// SetNickname names the most recent scan or photo.
func (s *Session) SetNickname(ctx context.Context, name string) error {
	return s.Command(ctx, protocol.CommandSetNickname, name)
}

// UploadScan uploads a scan or file to cloud storage.
func (s *Session) UploadScan(ctx context.Context, fileName string) error {
	return s.Command(ctx, protocol.CommandUploadRemote, fileName)
}

// GetFile asks the device to send over the named file.
func (s *Session) GetFile(ctx context.Context, fileName string) error {
	return s.Command(ctx, protocol.CommandGetFile, fileName)
}

// roundTrip sends p and records the decoded structured response.
func (s *Session) roundTrip(ctx context.Context, op string, p protocol.Packet) (protocol.Response, error) {
	res, err := s.send(ctx, op, p)
	if err != nil {
		return protocol.Response{}, err
	}
	resp, err := protocol.DecodeResponse(res.Body)
	if err != nil {
		return protocol.Response{}, s.fail(op, err)
	}
	s.last = resp
	s.hasLast = true
	return resp, nil
}

func (s *Session) send(ctx context.Context, op string, p protocol.Packet) (transport.Result, error) {
	payload, route, err := protocol.Encode(p)
	if err != nil {
		return transport.Result{}, s.fail(op, err)
	}
	res, err := s.exchange.Send(ctx, route, payload)
	if err != nil {
		return transport.Result{}, s.fail(op, err)
	}
	return res, nil
}

func (s *Session) fail(op string, err error) error {
	log.Error().Str("op", op).Str("endpoint", s.Endpoint()).Err(err).Msg("remote operation failed")
	return &OpError{Op: op, Endpoint: s.Endpoint(), Err: err}
}
