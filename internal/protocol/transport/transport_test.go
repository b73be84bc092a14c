package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/testutil/testlog"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/testutil/tlstest"
	"github.com/gorilla/mux"
)

type capturedRequest struct {
	path        string
	contentType string
	body        string
}

func fakeDevice(t *testing.T, seen chan<- capturedRequest) *mux.Router {
	t.Helper()
	r := mux.NewRouter()
	handle := func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		seen <- capturedRequest{path: req.URL.Path, contentType: req.Header.Get("Content-Type"), body: string(body)}
		w.Header().Set("Content-Type", protocol.ContentType)
		_, _ = w.Write([]byte("PacketRemoteResponse:\n  response: success\n  message: ok\n"))
	}
	r.HandleFunc(protocol.RouteRegister, handle).Methods(http.MethodPost)
	r.HandleFunc(protocol.RouteCommand, handle).Methods(http.MethodPost)
	r.HandleFunc("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}).Methods(http.MethodPost)
	r.HandleFunc("/empty", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)
	return r
}

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.RequestTimeout = 2 * time.Second
	return cfg
}

func TestSendPostsPayloadWithYAMLContentType(t *testing.T) {
	testlog.Start(t)
	seen := make(chan capturedRequest, 1)
	srv := httptest.NewTLSServer(fakeDevice(t, seen))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	payload := []byte("PacketRemoteRegister:\n  scanner_secret: 9n0SQ\n  version: 0\n")
	res, err := tr.Send(context.Background(), protocol.RouteRegister, payload)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	got := <-seen
	if got.path != protocol.RouteRegister {
		t.Fatalf("unexpected path: %q", got.path)
	}
	if got.contentType != protocol.ContentType {
		t.Fatalf("unexpected content type: %q", got.contentType)
	}
	if got.body != string(payload) {
		t.Fatalf("payload mismatch: %q", got.body)
	}
	if res.StatusCode != http.StatusOK || res.ContentType() != protocol.ContentType {
		t.Fatalf("unexpected result: status=%d ct=%q", res.StatusCode, res.ContentType())
	}
	if resp, err := protocol.DecodeResponse(res.Body); err != nil || resp.Message != "ok" {
		t.Fatalf("unexpected body: %+v err=%v", resp, err)
	}
}

func TestSendNon2xxReturnsTransportError(t *testing.T) {
	testlog.Start(t)
	srv := httptest.NewTLSServer(fakeDevice(t, make(chan capturedRequest, 1)))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	_, err = tr.Send(context.Background(), "/teapot", []byte("x"))
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if terr.StatusCode != http.StatusTeapot || terr.Body != "short and stout" {
		t.Fatalf("unexpected transport error: %+v", terr)
	}
	if terr.Status != "I'm a teapot" {
		t.Fatalf("unexpected status message: %q", terr.Status)
	}
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport in chain")
	}
}

func TestSendEmptyBodyIsMissingBody(t *testing.T) {
	testlog.Start(t)
	srv := httptest.NewTLSServer(fakeDevice(t, make(chan capturedRequest, 1)))
	defer srv.Close()

	tr, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if _, err := tr.Send(context.Background(), "/empty", nil); !errors.Is(err, ErrMissingBody) {
		t.Fatalf("expected ErrMissingBody, got %v", err)
	}
}

func TestSendVerifiedTLSRejectsUntrustedCertificate(t *testing.T) {
	testlog.Start(t)
	srv := httptest.NewTLSServer(fakeDevice(t, make(chan capturedRequest, 1)))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TLS.InsecureSkipVerify = false
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	_, err = tr.Send(context.Background(), protocol.RouteCommand, []byte("x"))
	var terr *Error
	if !errors.As(err, &terr) || terr.StatusCode != 0 {
		t.Fatalf("expected connection-level transport error, got %v", err)
	}
}

func TestSendProductionModeWithCAFile(t *testing.T) {
	testlog.Start(t)
	ca := tlstest.NewAuthority(t, "device-ca")
	seen := make(chan capturedRequest, 1)
	srv := ca.NewServer(t, fakeDevice(t, seen))

	cfg := testConfig(srv.URL)
	cfg.SecurityMode = SecurityModeProduction
	cfg.TLS.InsecureSkipVerify = false
	cfg.TLS.CAFile = ca.CAFile()
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if _, err := tr.Send(context.Background(), protocol.RouteCommand, []byte("x")); err != nil {
		t.Fatalf("send with trusted ca: %v", err)
	}
	if got := <-seen; got.path != protocol.RouteCommand {
		t.Fatalf("unexpected path: %q", got.path)
	}
}

func TestSendTimesOutOnHungDevice(t *testing.T) {
	testlog.Start(t)
	release := make(chan struct{})
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.RequestTimeout = 100 * time.Millisecond
	tr, err := New(cfg)
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	start := time.Now()
	_, err = tr.Send(context.Background(), protocol.RouteCommand, []byte("x"))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced: %v", elapsed)
	}
}

func TestSendMalformedEndpointIsConfigurationError(t *testing.T) {
	testlog.Start(t)
	tr, err := New(testConfig("://not a url"))
	if err != nil {
		t.Fatalf("endpoint must not be validated eagerly: %v", err)
	}
	_, err = tr.Send(context.Background(), protocol.RouteRegister, nil)
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, ErrTransport) {
		t.Fatalf("expected configuration transport error, got %v", err)
	}
}

func TestValidateClientTransport(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	if err := cfg.ValidateClientTransport(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg.SecurityMode = "Production"
	if err := cfg.ValidateClientTransport(); !errors.Is(err, ErrInsecureSkipNotAllowed) {
		t.Fatalf("expected ErrInsecureSkipNotAllowed, got %v", err)
	}
	cfg.TLS.InsecureSkipVerify = false
	if err := cfg.ValidateClientTransport(); !errors.Is(err, ErrTLSCAFileRequired) {
		t.Fatalf("expected ErrTLSCAFileRequired, got %v", err)
	}
	cfg.SecurityMode = "staging"
	if err := cfg.ValidateClientTransport(); !errors.Is(err, ErrInvalidSecurityMode) {
		t.Fatalf("expected ErrInvalidSecurityMode, got %v", err)
	}
	if _, err := New(cfg); !errors.Is(err, ErrInvalidSecurityMode) {
		t.Fatalf("New must validate, got %v", err)
	}
}

func TestNewRejectsUnreadableCAFile(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultConfig()
	cfg.TLS.CAFile = "/nonexistent/ca.crt"
	if _, err := New(cfg); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSetEndpointRetargets(t *testing.T) {
	testlog.Start(t)
	tr, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("new transport: %v", err)
	}
	if tr.Endpoint() != DefaultEndpoint {
		t.Fatalf("unexpected default endpoint: %q", tr.Endpoint())
	}
	tr.SetEndpoint("https://10.0.0.7:3003")
	if tr.Config().Endpoint != "https://10.0.0.7:3003" {
		t.Fatalf("endpoint not updated: %q", tr.Config().Endpoint)
	}
}

func TestNextBackoffDelayDeterministicNoJitter(t *testing.T) {
	testlog.Start(t)
	cfg := BackoffConfig{
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
		Jitter:       false,
	}
	if got := NextBackoffDelay(cfg, 1, nil); got != 250*time.Millisecond {
		t.Fatalf("attempt1 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 2, nil); got != 500*time.Millisecond {
		t.Fatalf("attempt2 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 3, nil); got != time.Second {
		t.Fatalf("attempt3 got=%v", got)
	}
	if got := NextBackoffDelay(cfg, 6, nil); got != 5*time.Second {
		t.Fatalf("attempt6 got=%v", got)
	}
}
