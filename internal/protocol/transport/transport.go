package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/observability"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Exchange performs one request/response round trip. Session depends on this
// boundary so tests can substitute bounded fakes.
type Exchange interface {
	Send(ctx context.Context, route string, payload []byte) (Result, error)
}

// Result is the raw outcome of a successful exchange.
type Result struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// ContentType returns the response media type without parameters.
func (r Result) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// Transport posts serialized packets to one device endpoint over HTTPS.
type Transport struct {
	cfg    Config
	client *http.Client
}

var _ Exchange = (*Transport)(nil)

// New validates cfg and builds the underlying HTTP client. The endpoint is not
// validated; a bad endpoint surfaces on the first Send.
func New(cfg Config) (*Transport, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.ValidateClientTransport(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.clientTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if cfg.TLS.InsecureSkipVerify {
		log.Warn().Str("endpoint", cfg.Endpoint).Msg("transport tls verification disabled")
	}
	return &Transport{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				TLSClientConfig:     tlsCfg,
				TLSHandshakeTimeout: cfg.RequestTimeout,
				MaxIdleConnsPerHost: 1,
			},
		},
	}, nil
}

func (t *Transport) Config() Config {
	return t.cfg
}

func (t *Transport) Endpoint() string {
	return t.cfg.Endpoint
}

// SetEndpoint retargets the transport. Safe only between exchanges.
func (t *Transport) SetEndpoint(endpoint string) {
	t.cfg.Endpoint = endpoint
}

// Send posts payload to endpoint+route. Non-2xx responses, connection failures
// and empty bodies are returned as *Error; the body is always drained and
// closed before returning.
func (t *Transport) Send(ctx context.Context, route string, payload []byte) (Result, error) {
	url := t.cfg.Endpoint + route
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		observability.RecordExchange(route, 0, time.Since(start))
		return Result{}, &Error{URL: url, Err: fmt.Errorf("%w: endpoint %q: %w", ErrConfiguration, t.cfg.Endpoint, err)}
	}
	req.Header.Set("Content-Type", protocol.ContentType)
	req.Header.Set("Accept", protocol.ContentType+", image/*")

	resp, err := t.client.Do(req)
	if err != nil {
		observability.RecordExchange(route, 0, time.Since(start))
		log.Debug().Str("url", url).Err(err).Msg("transport exchange failed")
		return Result{}, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	observability.RecordExchange(route, resp.StatusCode, time.Since(start))
	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("transport exchange")

	result := Result{
		StatusCode: resp.StatusCode,
		Status:     statusMessage(resp),
		Header:     resp.Header,
		Body:       body,
	}
	if readErr != nil {
		return Result{}, &Error{URL: url, StatusCode: resp.StatusCode, Status: result.Status, Body: string(body), Err: readErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &Error{URL: url, StatusCode: resp.StatusCode, Status: result.Status, Body: string(body)}
	}
	if len(body) == 0 {
		return Result{}, &Error{URL: url, StatusCode: resp.StatusCode, Status: result.Status, Err: ErrMissingBody}
	}
	return result, nil
}

// statusMessage strips the numeric code from resp.Status ("404 Not Found").
func statusMessage(resp *http.Response) string {
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}
