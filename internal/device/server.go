package device

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NINOX-360/Surface-Inspector-Remote/internal/observability"
	"github.com/NINOX-360/Surface-Inspector-Remote/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	frameContentType = "image/jpeg"
	shutdownTimeout  = 5 * time.Second
)

// Device serves the remote-control protocol for one simulated scanner.
type Device struct {
	cfg      Config
	scanner  *Scanner
	router   *gin.Engine
	appeared time.Time
}

func New(cfg Config) *Device {
	cfg = cfg.withDefaults()
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())

	d := &Device{
		cfg:      cfg,
		scanner:  NewScanner(cfg.ScannerSecret),
		router:   r,
		appeared: time.Now(),
	}
	d.registerRoutes()
	return d
}

func (d *Device) Handler() http.Handler {
	return d.router
}

func (d *Device) Scanner() *Scanner {
	return d.scanner
}

func (d *Device) registerRoutes() {
	d.router.POST(protocol.RouteRegister, d.handleRegister)
	d.router.POST(protocol.RouteCommand, d.handleCommand)
	d.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(d.appeared).String(),
			"state":   d.state(),
			"version": "0.0.1",
		})
	})
	d.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (d *Device) state() string {
	if d.scanner.Settings().Scanning {
		return StateScanning
	}
	return StateIdle
}

func (d *Device) handleRegister(c *gin.Context) {
	packet, ok := d.readPacket(c, protocol.RouteRegister)
	if !ok {
		return
	}
	reg := packet.(protocol.RegisterPacket)
	resp := d.scanner.Register(reg)
	if resp.OK() {
		log.Info().Int("version", reg.Version).Msg("device client registered")
	} else {
		log.Warn().Str("reason", resp.Message).Msg("device registration rejected")
	}
	writeResponse(c, http.StatusOK, resp)
}

func (d *Device) handleCommand(c *gin.Context) {
	packet, ok := d.readPacket(c, protocol.RouteCommand)
	if !ok {
		return
	}
	cmd := packet.(protocol.CommandPacket)
	authorized := d.scanner.Authorized(cmd.Secret)

	if cmd.Command == protocol.CommandCaptureVideoFrame {
		d.capture(c, authorized)
		return
	}

	resp := failure(msgUnregistered)
	if authorized {
		resp = d.scanner.Apply(cmd.Command, cmd.Value)
	}
	observability.RecordDeviceCommand(string(cmd.Command), resp.Status)
	log.Debug().
		Str("command", string(cmd.Command)).
		Str("value", cmd.Value).
		Str("response", resp.Status).
		Str("message", resp.Message).
		Msg("device command handled")
	writeResponse(c, http.StatusOK, resp)
}

func (d *Device) capture(c *gin.Context, authorized bool) {
	name := string(protocol.CommandCaptureVideoFrame)
	if !authorized {
		observability.RecordDeviceCommand(name, protocol.StatusFailure)
		writeResponse(c, http.StatusUnauthorized, failure(msgUnregistered))
		return
	}
	frame, err := renderFrame(d.cfg.FrameWidth, d.cfg.FrameHeight, d.scanner.nextFrame())
	if err != nil {
		log.Error().Err(err).Msg("device frame render failed")
		observability.RecordDeviceCommand(name, protocol.StatusFailure)
		writeResponse(c, http.StatusInternalServerError, failure("frame unavailable"))
		return
	}
	observability.RecordDeviceCommand(name, protocol.StatusSuccess)
	c.Data(http.StatusOK, frameContentType, frame)
}

func (d *Device) readPacket(c *gin.Context, route string) (protocol.Packet, bool) {
	body, err := c.GetRawData()
	if err != nil {
		writeResponse(c, http.StatusBadRequest, failure("unreadable body"))
		return nil, false
	}
	packet, err := protocol.DecodePacket(route, body)
	if err != nil {
		log.Warn().Str("route", route).Err(err).Msg("device received malformed packet")
		writeResponse(c, http.StatusBadRequest, failure("malformed packet"))
		return nil, false
	}
	return packet, true
}

func writeResponse(c *gin.Context, status int, resp protocol.Response) {
	body, err := protocol.EncodeResponse(resp)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	c.Data(status, protocol.ContentType, body)
}

// Serve listens with TLS until ctx is cancelled. Without a configured
// certificate pair a self-signed certificate for localhost is used.
func (d *Device) Serve(ctx context.Context) error {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if d.cfg.CertFile == "" || d.cfg.KeyFile == "" {
		cert, err := SelfSignedCertificate("localhost", "127.0.0.1", "::1")
		if err != nil {
			return err
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	srv := &http.Server{
		Addr:              d.cfg.Addr,
		Handler:           d.router,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", d.cfg.Addr).Msg("device simulator listening")
		errCh <- srv.ListenAndServeTLS(d.cfg.CertFile, d.cfg.KeyFile)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("device: serve %s: %w", d.cfg.Addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("device simulator shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("device: shutdown: %w", err)
		}
		return nil
	}
}
