package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/config"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/device"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol/transport"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func simulatorConfig(t *testing.T, handler func(http.Handler) http.Handler) (config.ClientConfig, *device.Device) {
	t.Helper()
	testlog.Start(t)
	d := device.New(device.Config{ScannerSecret: "k28b1", FrameWidth: 40, FrameHeight: 30})
	var h http.Handler = d.Handler()
	if handler != nil {
		h = handler(h)
	}
	srv := httptest.NewTLSServer(h)
	t.Cleanup(srv.Close)

	cfg := config.DefaultClientConfig()
	cfg.Remote.Transport.Endpoint = srv.URL
	cfg.Remote.Transport.Backoff = transport.BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1, MaxDelay: time.Millisecond}
	cfg.ServerSecret = "k28b1"
	cfg.FramePath = filepath.Join(t.TempDir(), "frame.png")
	return cfg, d
}

func TestRunDemoAgainstSimulator(t *testing.T) {
	cfg, d := simulatorConfig(t, nil)
	var out bytes.Buffer

	if err := run(context.Background(), cfg, commandDemo, "", &out); err != nil {
		t.Fatalf("demo: %v\n%s", err, out.String())
	}
	if _, err := os.Stat(cfg.FramePath); err != nil {
		t.Fatalf("expected saved frame: %v", err)
	}
	if !strings.Contains(out.String(), "FRAME: "+cfg.FramePath+" (40x30)") {
		t.Fatalf("missing frame line:\n%s", out.String())
	}
	if got := strings.Count(out.String(), "RESPONSE: success"); got != 5 {
		t.Fatalf("expected 5 successful responses, got %d:\n%s", got, out.String())
	}
	if !strings.HasSuffix(out.String(), "MESSAGE: IDLE\n") {
		t.Fatalf("expected final state message:\n%s", out.String())
	}

	settings := d.Scanner().Settings()
	if settings.RequireStill || !settings.RequireMarker {
		t.Fatalf("unexpected requirements: %+v", settings)
	}
	if settings.ExposureNS != 10_000_000 || settings.SensitivityISO != 800 {
		t.Fatalf("unexpected camera settings: %+v", settings)
	}
}

func TestRunSingleCommands(t *testing.T) {
	cfg, d := simulatorConfig(t, nil)

	var out bytes.Buffer
	if err := run(context.Background(), cfg, "nickname", "bracket-7", &out); err != nil {
		t.Fatalf("nickname: %v", err)
	}
	if d.Scanner().Settings().Nickname != "bracket-7" {
		t.Fatalf("nickname not applied")
	}

	err := run(context.Background(), cfg, "stop", "", io.Discard)
	if !errors.Is(err, ErrDeviceRejected) {
		t.Fatalf("expected device rejection for stop while idle, got %v", err)
	}

	if err := run(context.Background(), cfg, "EXPOSURE", "fast", io.Discard); err == nil {
		t.Fatalf("expected exposure parse error")
	}
	if err := run(context.Background(), cfg, "teleport", "", io.Discard); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestRegisterWrongSecretIsRejectedWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	cfg, _ := simulatorConfig(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	cfg.ServerSecret = "wrong"

	err := run(context.Background(), cfg, "state", "", io.Discard)
	if !errors.Is(err, ErrDeviceRejected) {
		t.Fatalf("expected ErrDeviceRejected, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single register exchange, got %d", calls.Load())
	}
}

func TestRegisterRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	cfg, _ := simulatorConfig(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				http.Error(w, "warming up", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	var out bytes.Buffer
	if err := run(context.Background(), cfg, "state", "", &out); err != nil {
		t.Fatalf("expected register to succeed on third attempt: %v", err)
	}
	if !strings.Contains(out.String(), "MESSAGE: IDLE") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	calls.Store(-10)
	cfg.RegisterAttempts = 2
	err := run(context.Background(), cfg, "state", "", io.Discard)
	var terr *transport.Error
	if !errors.As(err, &terr) || terr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 transport error after retries, got %v", err)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "client.toml")
	if err := os.WriteFile(path, []byte("endpoint = \"https://10.0.0.2:3003\"\nserver_secret = \"abc\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := parseOptions([]string{"-config", path, "-secret", "k28b1", "-cmd", "state"}, io.Discard)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Remote.Transport.Endpoint != "https://10.0.0.2:3003" {
		t.Fatalf("unexpected endpoint %q", cfg.Remote.Transport.Endpoint)
	}
	if cfg.ServerSecret != "k28b1" {
		t.Fatalf("flag secret should win, got %q", cfg.ServerSecret)
	}
	if opts.command != "state" {
		t.Fatalf("unexpected command %q", opts.command)
	}

	if _, err := parseOptions([]string{"-bogus"}, io.Discard); err == nil {
		t.Fatalf("expected unknown flag error")
	}
}
